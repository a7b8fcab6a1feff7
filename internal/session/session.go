/* 세션 확인과 프로필 생성 보장(lifecycle) */

package session

import (
	"errors"

	"SupabaseAuthPortal/internal/logger"
	"SupabaseAuthPortal/internal/models"
	"SupabaseAuthPortal/internal/supabase"

	"github.com/sirupsen/logrus"
)

// 요청 단위로 전달되는 명시적 세션 객체. 전역 상태 없음.
type Session struct {
	Token string
	User  supabase.AuthUser
}

type Manager struct {
	client *supabase.Client
}

func NewManager(client *supabase.Client) *Manager {
	return &Manager{client: client}
}

// Resolve는 bearer 토큰을 백엔드에 조회해 세션을 복원한다.
// 토큰 포맷/만료 판단은 전부 백엔드에 위임.
func (m *Manager) Resolve(token string) (*Session, error) {
	user, err := m.client.GetUser(token)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: *user}, nil
}

// EnsureProfile은 사용자 최초 방문 시 기본 프로필 행을 만든다.
// upsert(ignore-duplicates)라서 몇 번을 불러도 행은 user_id 당 1개.
func (m *Manager) EnsureProfile(user supabase.AuthUser) error {
	if _, err := m.client.GetProfile(user.ID); err == nil {
		return nil
	} else if !errors.Is(err, supabase.ErrProfileNotFound) {
		return err
	}

	err := m.client.InsertProfile(models.Profile{
		UserID:   user.ID,
		FullName: models.DefaultFullName,
		Bio:      models.DefaultBio,
		Email:    user.Email,
	})
	if err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": user.ID,
	}).Info("Initial profile created")
	return nil
}
