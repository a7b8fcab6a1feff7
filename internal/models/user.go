package models

// 세션 사용자 + 프로필 행을 합친 응답 모델
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name,omitempty"`
	Bio           string `json:"bio,omitempty"`
	Age           int    `json:"age,omitempty"`
	Theme         string `json:"theme,omitempty"`
	Notifications bool   `json:"notifications"`
	Language      string `json:"language,omitempty"`
}

// 설정 수정 요청 바디, nil 필드는 변경하지 않음 (exclude-unset)
type Settings struct {
	FullName      *string `json:"full_name,omitempty"`
	Email         *string `json:"email,omitempty"`
	Bio           *string `json:"bio,omitempty"`
	Age           *int    `json:"age,omitempty"`
	Theme         *string `json:"theme,omitempty"`
	Notifications *bool   `json:"notifications,omitempty"`
	Language      *string `json:"language,omitempty"`
}
