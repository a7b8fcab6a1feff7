package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, env *testEnv, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	w := doJSON(t, env, http.MethodPost, "/login", `{"email":"ada@example.com","password":"secret"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginSuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, testToken, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)

	// 로그인 성공은 기본 프로필 생성을 보장한다
	row, ok := env.backend.rows[testUser]
	require.True(t, ok)
	assert.Equal(t, "New User", row.FullName)
}

func TestLoginWrongCredentials(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	w := doJSON(t, env, http.MethodPost, "/login", `{"email":"ada@example.com","password":"wrong"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Login failed: Invalid login credentials")
	// 실패한 로그인은 부분 세션도 프로필도 남기지 않는다
	assert.Empty(t, env.backend.rows)
}

func TestRegisterSuccess(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	w := doJSON(t, env, http.MethodPost, "/register",
		`{"email":"new@example.com","password":"secret","confirm_password":"secret"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Registration successful! Please check your email to verify your account.")
	assert.Equal(t, 1, env.backend.signups)
}

// 비밀번호 확인 불일치는 백엔드 sign-up 호출 없이 거절된다
func TestRegisterPasswordMismatchNeverCallsBackend(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	w := doJSON(t, env, http.MethodPost, "/register",
		`{"email":"new@example.com","password":"secret","confirm_password":"different"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Passwords do not match")
	assert.Equal(t, 0, env.backend.signups)
}

func TestResetPassword(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	w := doJSON(t, env, http.MethodPost, "/reset-password", `{"email":"ada@example.com"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Password reset link sent to your email!")
}

// 토큰이 없으면 verify를 호출하지 않고 경고만 반환한다
func TestConfirmMissingTokenNeverCallsBackend(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	w := doJSON(t, env, http.MethodGet, "/confirm", "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No confirmation token found in the URL.")
	assert.Equal(t, 0, env.backend.verifies)
}

func TestConfirmUsesConfiguredTokenType(t *testing.T) {
	for _, tokenType := range []string{"signup", "email"} {
		env := newTestEnv(tokenType)

		w := doJSON(t, env, http.MethodGet, "/confirm?confirmation_token=otp-123", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Email confirmed successfully!")
		assert.Equal(t, tokenType, env.backend.lastVerifyType)

		env.Close()
	}
}

func TestConfirmInvalidToken(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	w := doJSON(t, env, http.MethodGet, "/confirm?confirmation_token=bad-token", "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Confirmation failed: Token has expired or is invalid")
}

func TestLogoutClearsConversation(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	conv := env.conversations.Get(testUser, testEmail)
	conv.Append("user", "remember me")
	conv.Context.Name = "Ada"

	w := doJSON(t, env, http.MethodPost, "/logout", "", testToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logged out successfully!")
	assert.Equal(t, 1, env.backend.signouts)

	fresh := env.conversations.Get(testUser, testEmail)
	assert.Empty(t, fresh.Context.Name)
	assert.Len(t, fresh.History(), 1)
}

func TestLogoutWithoutToken(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	w := doJSON(t, env, http.MethodPost, "/logout", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRouteRejectsInvalidToken(t *testing.T) {
	env := newTestEnv("signup")
	defer env.Close()

	w := doJSON(t, env, http.MethodGet, "/api/profile", "", "expired-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid authentication credentials")
}
