package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DELEBINITZ/user-auth-service/internal/auth"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/provider"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/resolver"
	"github.com/DELEBINITZ/user-auth-service/internal/user"
)

type Handler struct {
	auth      *auth.Service
	providers *provider.Registry
	resolver  resolver.Resolver
}

func NewHandler(
	svc *auth.Service,
	registry *provider.Registry,
	res resolver.Resolver,
) *Handler {
	return &Handler{
		auth:      svc,
		providers: registry,
		resolver:  res,
	}
}

// RegisterRoutes wires public and protected endpoints. requireAuth gates
// everything that needs a valid access token.
func (h *Handler) RegisterRoutes(r *gin.Engine, requireAuth gin.HandlerFunc) {
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)

	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)

	protected := r.Group("/")
	protected.Use(requireAuth)
	protected.POST("/auth/logout", h.Logout)
	protected.GET("/users/me", h.CurrentUser)
	protected.POST("/users/change-password", h.ChangePassword)
	protected.PATCH("/users/me", h.UpdateAccount)
	protected.PATCH("/users/me/avatar", h.UpdateAvatar)
	protected.PATCH("/users/me/visibility", h.UpdateVisibility)
	protected.GET("/users", h.ListUsers)
}

// userResponse is the sanitized account projection. The password hash and
// refresh token never leave the service.
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	FullName  string    `json:"fullname"`
	Phone     string    `json:"phone"`
	Bio       string    `json:"bio"`
	AvatarURL *string   `json:"avatar"`
	IsPublic  bool      `json:"is_public"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		IsPublic:  u.IsPublic,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// writeError maps service error kinds onto HTTP statuses with generic
// messages.
func writeError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, auth.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenReuse):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrUpstream):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": kindMessage(err)})
}

func kindMessage(err error) string {
	for _, kind := range []error{
		auth.ErrValidation,
		auth.ErrNotFound,
		auth.ErrCredentials,
		auth.ErrConflict,
		auth.ErrInvalidToken,
		auth.ErrTokenReuse,
		auth.ErrUpstream,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal error"
}
