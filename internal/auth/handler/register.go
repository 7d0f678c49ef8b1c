package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DELEBINITZ/user-auth-service/internal/auth"
)

type registerRequest struct {
	FullName string `json:"fullname" form:"fullname"`
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Register accepts JSON or multipart form; the multipart variant may
// carry an optional avatar file.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	in := auth.RegisterInput{}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if file, err := c.FormFile("avatar"); err == nil {
			f, err := file.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid avatar upload"})
				return
			}
			defer f.Close()

			url, err := h.auth.StoreAvatarBlob(c.Request.Context(), file.Filename, f)
			if err != nil {
				writeError(c, err)
				return
			}
			in.AvatarURL = &url
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	in.FullName = req.FullName
	in.Email = req.Email
	in.Username = req.Username
	in.Password = req.Password

	u, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": toResponse(u)})
}
