/**
* Name: 			auth_handler.go
* Description: 		Gin 프레임워크의 인증 HTTP 핸들러
* Workflow: 		로그인, 회원가입, 비밀번호 재설정, 이메일 확인, 로그아웃
 */
package handler

import (
	"net/http"
	"strings"

	"SupabaseAuthPortal/internal/logger"
	"SupabaseAuthPortal/internal/middleware"

	"github.com/gin-gonic/gin"
)

// /login 요청 바디
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"password123"`
}

// /register 요청 바디
type RegisterRequest struct {
	Email           string `json:"email" example:"new_user@example.com"`
	Password        string `json:"password" example:"password123"`
	ConfirmPassword string `json:"confirm_password" example:"password123"`
}

// /reset-password 요청 바디
type ResetPasswordRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

type LoginSuccessResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string `json:"token_type" example:"bearer"`
}

// Login godoc
// @Summary      로그인 (Login)
// @Description  이메일과 비밀번호로 백엔드 세션 토큰을 발급받습니다.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handler.LoginRequest true "로그인 요청 정보"
// @Success      200 {object} handler.LoginSuccessResponse
// @Failure      400 {object} handler.ErrorResponse "잘못된 요청 또는 인증 실패"
// @Router       /login [post]
func (h *Handler) Login(c *gin.Context) {
	var credentials LoginRequest
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if strings.TrimSpace(credentials.Email) == "" || credentials.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and Password cannot be empty"})
		return
	}

	sess, err := h.client.SignIn(credentials.Email, credentials.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Login failed: " + err.Error()})
		return
	}

	// 로그인 성공 시 첫 방문 프로필 생성 보장
	if err := h.sessions.EnsureProfile(sess.User); err != nil {
		logger.Log.WithError(err).WithField("user_id", sess.User.ID).Warn("Failed to ensure profile")
	}

	c.JSON(http.StatusOK, LoginSuccessResponse{
		AccessToken: sess.AccessToken,
		TokenType:   "bearer",
	})
}

// Register godoc
// @Summary      회원가입 (Register)
// @Description  새 계정을 생성합니다. 비밀번호 확인 불일치는 백엔드 호출 없이 거절됩니다.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handler.RegisterRequest true "회원가입 요청 정보"
// @Success      200 {object} handler.SuccessResponse
// @Failure      400 {object} handler.ErrorResponse
// @Router       /register [post]
func (h *Handler) Register(c *gin.Context) {
	var credentials RegisterRequest
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if strings.TrimSpace(credentials.Email) == "" || credentials.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and Password cannot be empty"})
		return
	}

	// 로컬 검증은 이것뿐, 나머지(중복 계정, 강도 등)는 백엔드가 판단
	if credentials.ConfirmPassword != "" && credentials.Password != credentials.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	if _, err := h.client.SignUp(credentials.Email, credentials.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Registration failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Registration successful! Please check your email to verify your account."})
}

// ResetPassword godoc
// @Summary      비밀번호 재설정 (Reset Password)
// @Description  재설정 링크 메일 발송을 백엔드에 요청합니다.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handler.ResetPasswordRequest true "재설정 대상 이메일"
// @Success      200 {object} handler.SuccessResponse
// @Failure      400 {object} handler.ErrorResponse
// @Router       /reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email cannot be empty"})
		return
	}

	if err := h.client.ResetPasswordForEmail(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to send reset link: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset link sent to your email!"})
}

// Confirm godoc
// @Summary      이메일 확인 (Confirm)
// @Description  확인 메일의 일회성 토큰을 검증합니다. 토큰이 없으면 백엔드를 호출하지 않습니다.
// @Tags         Auth
// @Produce      json
// @Param        confirmation_token query string false "확인 토큰 (token으로도 전달 가능)"
// @Success      200 {object} handler.SuccessResponse
// @Failure      400 {object} handler.ErrorResponse "토큰 누락 또는 검증 실패"
// @Router       /confirm [get]
func (h *Handler) Confirm(c *gin.Context) {
	token := c.Query("confirmation_token")
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No confirmation token found in the URL."})
		return
	}

	if err := h.client.VerifyOTP(token, h.confirmTokenType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Confirmation failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed successfully! You can now log in."})
}

// Logout godoc
// @Summary      로그아웃 (Logout)
// @Description  백엔드 세션을 무효화하고 프로세스 내 대화 상태를 버립니다.
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.SuccessResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse "인증 실패"
// @Router       /logout [post]
func (h *Handler) Logout(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication credentials"})
		return
	}

	if err := h.client.SignOut(sess.Token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Logout failed: " + err.Error()})
		return
	}

	h.conversations.Remove(sess.User.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully!"})
}
