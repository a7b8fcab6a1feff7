package models

// profiles 테이블의 한 행, user_id 당 최대 1개
type Profile struct {
	UserID        string `json:"user_id"`
	FullName      string `json:"full_name,omitempty"`
	Bio           string `json:"bio,omitempty"`
	Age           int    `json:"age,omitempty"`
	Theme         string `json:"theme,omitempty"`
	Notifications bool   `json:"notifications"`
	Language      string `json:"language,omitempty"`
	Email         string `json:"email,omitempty"`
}

// 신규 사용자 기본 프로필
const (
	DefaultFullName = "New User"
	DefaultBio      = "This is your bio."
)
