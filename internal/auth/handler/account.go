package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DELEBINITZ/user-auth-service/internal/auth"
	"github.com/DELEBINITZ/user-auth-service/internal/middleware"
	"github.com/DELEBINITZ/user-auth-service/internal/user"
)

func requester(c *gin.Context) (*user.User, bool) {
	u, ok := middleware.UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return u, ok
}

func (h *Handler) CurrentUser(c *gin.Context) {
	u, ok := requester(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toResponse(u)})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	u, ok := requester(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), u.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password changed"})
}

type updateAccountRequest struct {
	FullName *string `json:"fullname"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Bio      *string `json:"bio"`
}

func (h *Handler) UpdateAccount(c *gin.Context) {
	u, ok := requester(c)
	if !ok {
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	updated, err := h.auth.UpdateProfile(c.Request.Context(), u.ID, auth.ProfileUpdate{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Bio:      req.Bio,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toResponse(updated)})
}

func (h *Handler) UpdateAvatar(c *gin.Context) {
	u, ok := requester(c)
	if !ok {
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar is required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid avatar upload"})
		return
	}
	defer f.Close()

	updated, err := h.auth.UpdateAvatar(c.Request.Context(), u.ID, file.Filename, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toResponse(updated)})
}

func (h *Handler) UpdateVisibility(c *gin.Context) {
	u, ok := requester(c)
	if !ok {
		return
	}

	updated, err := h.auth.ToggleVisibility(c.Request.Context(), u.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toResponse(updated)})
}

func (h *Handler) ListUsers(c *gin.Context) {
	u, ok := requester(c)
	if !ok {
		return
	}

	users, err := h.auth.ListUsers(c.Request.Context(), u)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, item := range users {
		out = append(out, toResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}
