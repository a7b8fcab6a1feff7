/**
* Name: 			profile_handler.go
* Description: 		프로필 조회 및 설정 변경 핸들러
* Workflow: 		profiles 행 read-modify-write, 낙관적 동시성 토큰 없음 (last writer wins)
 */
package handler

import (
	"errors"
	"net/http"

	"SupabaseAuthPortal/internal/middleware"
	"SupabaseAuthPortal/internal/models"
	"SupabaseAuthPortal/internal/supabase"

	"github.com/gin-gonic/gin"
)

// Profile godoc
// @Summary      프로필 조회 (Profile)
// @Description  인증된 사용자의 profiles 행을 조회합니다.
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.User
// @Failure      401 {object} handler.ErrorResponse "인증 실패"
// @Failure      404 {object} handler.ErrorResponse "프로필 없음"
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication credentials"})
		return
	}

	profile, err := h.client.GetProfile(sess.User.ID)
	if err != nil {
		if errors.Is(err, supabase.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to fetch profile: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, profileToUser(sess.User, profile))
}

// UpdateSettings godoc
// @Summary      설정 변경 (Settings)
// @Description  전달된 필드만 반영합니다(exclude-unset). 수정된 프로필을 반환합니다.
// @Tags         API (Protected)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body models.Settings true "변경할 설정 값"
// @Success      200 {object} models.User
// @Failure      401 {object} handler.ErrorResponse "인증 실패"
// @Failure      404 {object} handler.ErrorResponse "프로필 없음"
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/settings [put]
func (h *Handler) UpdateSettings(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication credentials"})
		return
	}

	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	profile, err := h.client.UpdateProfile(sess.User.ID, settings)
	if err != nil {
		if errors.Is(err, supabase.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to update settings: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, profileToUser(sess.User, profile))
}

func profileToUser(user supabase.AuthUser, profile *models.Profile) models.User {
	email := profile.Email
	if email == "" {
		email = user.Email
	}
	return models.User{
		ID:            user.ID,
		Email:         email,
		FullName:      profile.FullName,
		Bio:           profile.Bio,
		Age:           profile.Age,
		Theme:         profile.Theme,
		Notifications: profile.Notifications,
		Language:      profile.Language,
	}
}
