package handler

import (
	"context"
	"strings"

	"github.com/gorilla/websocket"

	"SupabaseAuthPortal/internal/chat"
	"SupabaseAuthPortal/internal/logger"
)

// WebSocket으로 내려보내는 이벤트
type wsEvent struct {
	Type    string `json:"type"` // message | chunk | done | error
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) manageChatSession(conn *websocket.Conn, conv *chat.Conversation, ctx context.Context) {
	logger.Log.Infof("Chat session started for user: %s", conv.UserID)

ReadLoop:
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			logger.Log.WithError(err).Infof("Chat session closed for user: %s", conv.UserID)
			break ReadLoop
		}

		if messageType != websocket.TextMessage {
			logger.Log.Warnf("Unsupported message type from user %s: %d", conv.UserID, messageType)
			continue
		}

		question := strings.TrimSpace(string(message))
		if question == "" {
			continue
		}
		conv.Append("user", question)

		// 키워드 규칙 매칭 시 스트리밍 없이 즉답
		if reply, matched := chat.Dispatch(conv, question); matched {
			conv.Append("assistant", reply)
			if err := conn.WriteJSON(wsEvent{Type: "message", Content: reply}); err != nil {
				break ReadLoop
			}
			if err := conn.WriteJSON(wsEvent{Type: "done"}); err != nil {
				break ReadLoop
			}
			continue
		}

		chunks, err := h.engine.AnswerStream(ctx, conv, question)
		if err != nil {
			if writeErr := conn.WriteJSON(wsEvent{Type: "error", Error: err.Error()}); writeErr != nil {
				break ReadLoop
			}
			continue
		}

		var full strings.Builder
		failed := false
		for chunk := range chunks {
			if chunk.Err != nil {
				failed = true
				if err := conn.WriteJSON(wsEvent{Type: "error", Error: chunk.Err.Error()}); err != nil {
					break ReadLoop
				}
				break
			}
			full.WriteString(chunk.Content)
			if err := conn.WriteJSON(wsEvent{Type: "chunk", Content: chunk.Content}); err != nil {
				break ReadLoop
			}
		}

		if !failed {
			conv.Append("assistant", full.String())
			if err := conn.WriteJSON(wsEvent{Type: "done"}); err != nil {
				break ReadLoop
			}
		}
	}
	logger.Log.Infof("Chat session ended for user: %s", conv.UserID)
}
