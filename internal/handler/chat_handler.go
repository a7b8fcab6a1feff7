/**
* Name: 			chat_handler.go
* Description: 		채팅 및 인덱스 관리 핸들러
* Workflow: 		키워드 디스패치 -> (미매칭 시) RAG 엔진, 인덱스 재생성
 */
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"SupabaseAuthPortal/internal/chat"
	"SupabaseAuthPortal/internal/middleware"

	"github.com/gin-gonic/gin"
)

// 인덱스 재생성 제한 시간
const indexBuildTimeout = 30 * time.Second

// /api/chat 요청 바디
type ChatRequest struct {
	Message string `json:"message" example:"What is st.session_state?"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type IndexResponse struct {
	Message string `json:"message" example:"User index created successfully"`
	UserID  string `json:"user_id"`
}

// Chat godoc
// @Summary      채팅 (Chat)
// @Description  질문 한 건을 처리합니다. 키워드 규칙에 걸리면 모델 호출 없이 즉답합니다.
// @Tags         API (Protected)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handler.ChatRequest true "사용자 메시지"
// @Success      200 {object} handler.ChatResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse "인증 실패"
// @Failure      500 {object} handler.ErrorResponse "모델 호출 실패"
// @Router       /api/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication credentials"})
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
		return
	}

	conv := h.conversations.Get(sess.User.ID, sess.User.Email)
	conv.Append("user", req.Message)

	// 키워드 규칙이 먼저, 첫 매칭이 이긴다
	if reply, matched := chat.Dispatch(conv, req.Message); matched {
		conv.Append("assistant", reply)
		c.JSON(http.StatusOK, ChatResponse{Response: reply})
		return
	}

	answer, err := h.engine.Answer(c.Request.Context(), conv, req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chat failed: " + err.Error()})
		return
	}

	conv.Append("assistant", answer)
	c.JSON(http.StatusOK, ChatResponse{Response: answer})
}

// CreateIndex godoc
// @Summary      벡터 인덱스 재생성 (Index)
// @Description  문서 디렉토리 전체를 다시 임베딩합니다. 30초 제한.
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.IndexResponse
// @Failure      401 {object} handler.ErrorResponse "인증 실패"
// @Failure      500 {object} handler.ErrorResponse "인덱스 생성 실패"
// @Failure      504 {object} handler.ErrorResponse "제한 시간 초과"
// @Router       /api/index [post]
func (h *Handler) CreateIndex(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication credentials"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), indexBuildTimeout)
	defer cancel()

	if err := h.index.Rebuild(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Index creation timed out"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user index: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, IndexResponse{
		Message: "User index created successfully",
		UserID:  sess.User.ID,
	})
}
