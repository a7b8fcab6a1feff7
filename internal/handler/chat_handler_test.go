package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postChat(t *testing.T, env *testEnv, message string) (*ChatResponse, int) {
	t.Helper()
	body, _ := json.Marshal(ChatRequest{Message: message})
	w := doJSON(t, env, http.MethodPost, "/api/chat", string(body), testToken)
	if w.Code != http.StatusOK {
		return nil, w.Code
	}
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp, w.Code
}

// 키워드 규칙 매칭은 모델 호출 없이 즉답한다. 엔진이 없어도 동작해야 함.
func TestChatKeywordDispatch(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	resp, code := postChat(t, env, "My name is Ada")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Nice to meet you, Ada! I'll remember your name.", resp.Response)

	resp, code = postChat(t, env, "what's my name?")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Your name is Ada.", resp.Response)
}

// 기억은 요청을 넘어 대화 단위로 유지된다
func TestChatMemoryAcrossRequests(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	_, code := postChat(t, env, "I live in Seoul")
	require.Equal(t, http.StatusOK, code)

	resp, code := postChat(t, env, "where do I live?")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "You told me you live in Seoul.", resp.Response)

	// 대화 히스토리에 인사말 + 4건이 쌓인다
	conv := env.conversations.Get(testUser, testEmail)
	assert.Len(t, conv.History(), 5)
}

func TestChatEmptyMessage(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	w := doJSON(t, env, http.MethodPost, "/api/chat", `{"message":"   "}`, testToken)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Message cannot be empty")
}
