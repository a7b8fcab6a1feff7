package middleware

import (
	"net/http"
	"strings"

	"SupabaseAuthPortal/internal/logger"
	"SupabaseAuthPortal/internal/session"

	"github.com/gin-gonic/gin"
)

const SessionKey = "session"

// Bearer 토큰을 백엔드 사용자 조회로 검증한다.
// 토큰 포맷 해석이나 자체 만료 검사는 하지 않는다.
func AuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		sess, err := sessions.Resolve(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication credentials"})
			c.Abort()
			return
		}

		// 인증된 방문마다 프로필 존재 보장 (upsert, user_id 당 1행)
		if err := sessions.EnsureProfile(sess.User); err != nil {
			logger.Log.WithError(err).WithField("user_id", sess.User.ID).Warn("Failed to ensure profile")
		}

		c.Set(SessionKey, sess)
		c.Next()
	}
}

// CurrentSession은 미들웨어가 넣어둔 세션을 꺼낸다.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := value.(*session.Session)
	return sess, ok
}
