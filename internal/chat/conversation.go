/**
* Name: 			conversation.go
* Description: 		프로세스 내 대화 상태 관리
* Workflow: 		사용자별 대화 생성/조회/삭제, 히스토리와 컨텍스트 누적
 */
package chat

import (
	"fmt"
	"strings"
	"sync"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// 키워드 매칭으로 누적되는 대화 메모리
type Context struct {
	Name        string
	Location    string
	Preferences []string
}

// 모델 호출 파라미터, 대화 단위로 덮어쓸 수 있음
type ModelSettings struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// 한 사용자의 대화. 세션 시작 시 생성, 로그아웃/프로세스 종료 시 소멸.
// 영속화는 하지 않는다.
type Conversation struct {
	UserID   string
	Messages []Message
	Context  Context
	Settings ModelSettings

	mu sync.Mutex
}

func (c *Conversation) Append(role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Messages = append(c.Messages, Message{Role: role, Content: content})
}

// LastAssistant는 히스토리의 마지막 assistant 메시지를 반환한다.
// 새 대화에서는 인사말이, 이어지는 대화에서는 마지막 응답이 나온다.
func (c *Conversation) LastAssistant() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == "assistant" {
			return c.Messages[i].Content, true
		}
	}
	return "", false
}

func (c *Conversation) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}

// ContextPrompt는 기억된 내용을 시스템 프롬프트 문장으로 바꾼다.
func (c *Conversation) ContextPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var parts []string
	if c.Context.Name != "" {
		parts = append(parts, fmt.Sprintf("The user's name is %s.", c.Context.Name))
	}
	if c.Context.Location != "" {
		parts = append(parts, fmt.Sprintf("The user lives in %s.", c.Context.Location))
	}
	if len(c.Context.Preferences) > 0 {
		parts = append(parts, fmt.Sprintf("The user likes: %s.", strings.Join(c.Context.Preferences, ", ")))
	}
	if len(parts) == 0 {
		return ""
	}
	return "What you know about the user: " + strings.Join(parts, " ")
}

// 사용자 id 기준 대화 저장소
type Manager struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation

	defaults ModelSettings
}

func NewManager(defaults ModelSettings) *Manager {
	return &Manager{
		conversations: make(map[string]*Conversation),
		defaults:      defaults,
	}
}

// Get은 사용자의 대화를 반환하고, 없으면 인사말과 함께 새로 만든다.
func (m *Manager) Get(userID, email string) *Conversation {
	m.mu.RLock()
	conv, ok := m.conversations[userID]
	m.mu.RUnlock()
	if ok {
		return conv
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if conv, ok := m.conversations[userID]; ok {
		return conv
	}

	conv = &Conversation{
		UserID:   userID,
		Settings: m.defaults,
		Messages: []Message{{
			Role:    "assistant",
			Content: fmt.Sprintf("Hello %s! Ask me a question about Streamlit's open-source Python library!", email),
		}},
	}
	m.conversations[userID] = conv
	return conv
}

// Remove는 로그아웃 시 대화 상태를 버린다.
func (m *Manager) Remove(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, userID)
}
