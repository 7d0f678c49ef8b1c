package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DELEBINITZ/user-auth-service/internal/auth"
	"github.com/DELEBINITZ/user-auth-service/internal/middleware"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, pair, err := h.auth.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	setTokenCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"user":          toResponse(u),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	u, ok := middleware.UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), u.ID); err != nil {
		writeError(c, err)
		return
	}

	clearTokenCookies(c)
	c.Status(http.StatusNoContent)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh accepts the token from the request body or the cookie set at
// login; the caller supplies whichever it was last given.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	presented := req.RefreshToken
	if presented == "" {
		if cookie, err := c.Request.Cookie(refreshCookieName); err == nil {
			presented = cookie.Value
		}
	}

	pair, err := h.auth.Refresh(c.Request.Context(), presented)
	if err != nil {
		writeError(c, err)
		return
	}

	setTokenCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

func setTokenCookies(c *gin.Context, pair auth.TokenPair) {
	for _, ck := range []struct {
		name  string
		value string
	}{
		{accessCookieName, pair.AccessToken},
		{refreshCookieName, pair.RefreshToken},
	} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     ck.name,
			Value:    ck.value,
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func clearTokenCookies(c *gin.Context) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
