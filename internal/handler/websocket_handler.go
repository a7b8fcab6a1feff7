package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"SupabaseAuthPortal/internal/logger"
)

// Upgrade HTTP connection to WebSocket
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleChatWS godoc
// @Summary      채팅 WebSocket 연결
// @Description  스트리밍 채팅을 위한 WebSocket 연결을 시작합니다.
// @Description  <br>
// @Description  **참고: 이것은 표준 HTTP API가 아닙니다.**
// @Description  클라이언트는 `ws://` 또는 `wss://` 스킴으로 연결해야 하며,
// @Description  인증은 HTTP Header가 아닌 **쿼리 파라미터('token')**를 통해 수행됩니다.
// @Tags         WebSocket (Chat)
// @Param        token query string true "로그인 시 발급받은 bearer 토큰"
// @Success      101 {string} string "101 Switching Protocols"
// @Failure      401 {object} handler.ErrorResponse "토큰 누락 또는 유효하지 않은 토큰"
// @Router       /ws/chat [get]
func (h *Handler) HandleChatWS(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}

	// 토큰 검증은 백엔드 사용자 조회로 위임
	sess, err := h.sessions.Resolve(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", sess.User.ID).Error("Failed to upgrade to WebSocket")
		return
	}
	defer conn.Close()

	wsSessionID := uuid.New().String()
	logger.Log.WithField("ws_session", wsSessionID).Infof("WebSocket connection established for user: %s", sess.User.Email)

	// 초기 메시지 전송: 새 대화면 인사말, 재접속이면 마지막 응답을 되돌려준다
	conv := h.conversations.Get(sess.User.ID, sess.User.Email)
	if opening, ok := conv.LastAssistant(); ok {
		if err := conn.WriteJSON(wsEvent{Type: "message", Content: opening}); err != nil {
			logger.Log.WithError(err).Error("Error sending greeting")
			return
		}
	}

	h.manageChatSession(conn, conv, c.Request.Context())
}
