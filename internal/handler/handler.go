package handler

import (
	"SupabaseAuthPortal/internal/chat"
	"SupabaseAuthPortal/internal/rag"
	"SupabaseAuthPortal/internal/session"
	"SupabaseAuthPortal/internal/supabase"
)

type SuccessResponse struct {
	Message string `json:"message" example:"Logged out successfully!"`
}
type ErrorResponse struct {
	Error string `json:"error" example:"에러 원인 및 설명"`
}

// 핸들러 의존성 묶음. engine/index가 nil이면 채팅 라우트는 등록되지 않는다.
type Handler struct {
	client        *supabase.Client
	sessions      *session.Manager
	conversations *chat.Manager

	engine *rag.Engine
	index  *rag.Index

	confirmTokenType string
}

func New(client *supabase.Client, sessions *session.Manager, conversations *chat.Manager,
	engine *rag.Engine, index *rag.Index, confirmTokenType string) *Handler {
	return &Handler{
		client:           client,
		sessions:         sessions,
		conversations:    conversations,
		engine:           engine,
		index:            index,
		confirmTokenType: confirmTokenType,
	}
}

func (h *Handler) ChatEnabled() bool {
	return h.engine != nil && h.index != nil
}
