package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"SupabaseAuthPortal/internal/chat"
	"SupabaseAuthPortal/internal/middleware"
	"SupabaseAuthPortal/internal/models"
	"SupabaseAuthPortal/internal/session"
	"SupabaseAuthPortal/internal/supabase"
)

const (
	testToken = "valid-token"
	testUser  = "user-1"
	testEmail = "ada@example.com"
)

// GoTrue + PostgREST 흉내. 호출 횟수를 센다.
type fakeSupabase struct {
	mu       sync.Mutex
	rows     map[string]models.Profile
	signups  int
	verifies int
	signouts int

	lastVerifyType string
}

func newFakeSupabase() (*fakeSupabase, *httptest.Server) {
	fb := &fakeSupabase{rows: make(map[string]models.Profile)}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()

		switch {
		case r.URL.Path == "/auth/v1/token":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "secret" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid login credentials"})
				return
			}
			json.NewEncoder(w).Encode(supabase.Session{
				AccessToken: testToken,
				TokenType:   "bearer",
				User:        supabase.AuthUser{ID: testUser, Email: testEmail},
			})
		case r.URL.Path == "/auth/v1/signup":
			fb.signups++
			json.NewEncoder(w).Encode(supabase.AuthUser{ID: "user-2", Email: "new@example.com"})
		case r.URL.Path == "/auth/v1/verify":
			fb.verifies++
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			fb.lastVerifyType = body["type"]
			if body["token"] == "bad-token" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"msg": "Token has expired or is invalid"})
				return
			}
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/auth/v1/recover":
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/auth/v1/logout":
			fb.signouts++
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/auth/v1/user":
			if r.Header.Get("Authorization") != "Bearer "+testToken {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"msg": "invalid JWT"})
				return
			}
			json.NewEncoder(w).Encode(supabase.AuthUser{ID: testUser, Email: testEmail})
		case r.URL.Path == "/rest/v1/profiles" && r.Method == http.MethodGet:
			userID := r.URL.Query().Get("user_id")[len("eq."):]
			if row, ok := fb.rows[userID]; ok {
				json.NewEncoder(w).Encode([]models.Profile{row})
				return
			}
			w.Write([]byte("[]"))
		case r.URL.Path == "/rest/v1/profiles" && r.Method == http.MethodPost:
			var row models.Profile
			json.NewDecoder(r.Body).Decode(&row)
			if _, exists := fb.rows[row.UserID]; !exists {
				fb.rows[row.UserID] = row
			}
			w.WriteHeader(http.StatusCreated)
		case r.URL.Path == "/rest/v1/profiles" && r.Method == http.MethodPatch:
			userID := r.URL.Query().Get("user_id")[len("eq."):]
			row, ok := fb.rows[userID]
			if !ok {
				w.Write([]byte("[]"))
				return
			}
			var settings models.Settings
			json.NewDecoder(r.Body).Decode(&settings)
			applySettings(&row, settings)
			fb.rows[userID] = row
			json.NewEncoder(w).Encode([]models.Profile{row})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return fb, server
}

func applySettings(row *models.Profile, s models.Settings) {
	if s.FullName != nil {
		row.FullName = *s.FullName
	}
	if s.Email != nil {
		row.Email = *s.Email
	}
	if s.Bio != nil {
		row.Bio = *s.Bio
	}
	if s.Age != nil {
		row.Age = *s.Age
	}
	if s.Theme != nil {
		row.Theme = *s.Theme
	}
	if s.Notifications != nil {
		row.Notifications = *s.Notifications
	}
	if s.Language != nil {
		row.Language = *s.Language
	}
}

type testEnv struct {
	backend       *fakeSupabase
	server        *httptest.Server
	router        *gin.Engine
	conversations *chat.Manager
}

func newTestEnv(confirmType string) *testEnv {
	gin.SetMode(gin.TestMode)

	fb, server := newFakeSupabase()
	client := supabase.New(server.URL, "test-key")
	sessions := session.NewManager(client)
	conversations := chat.NewManager(chat.ModelSettings{Model: "gpt-3.5-turbo", Temperature: 0.2, TopP: 1.0})

	h := New(client, sessions, conversations, nil, nil, confirmType)

	router := gin.New()
	router.POST("/login", h.Login)
	router.POST("/register", h.Register)
	router.POST("/reset-password", h.ResetPassword)
	router.GET("/confirm", h.Confirm)
	router.POST("/logout", middleware.AuthMiddleware(sessions), h.Logout)
	router.GET("/ws/chat", h.HandleChatWS)
	protected := router.Group("/api").Use(middleware.AuthMiddleware(sessions))
	{
		protected.GET("/profile", h.Profile)
		protected.PUT("/settings", h.UpdateSettings)
		protected.POST("/chat", h.Chat)
	}

	return &testEnv{backend: fb, server: server, router: router, conversations: conversations}
}

func (e *testEnv) Close() {
	e.server.Close()
}
