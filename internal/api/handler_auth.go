package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sparesmart-backend/internal/auth"
)

// Login exchanges the operator credentials for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	if !h.auth.Enabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "authentication is disabled"})
		return
	}

	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	token, expires, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		log.Error().Err(err).Msg("failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"token_type": "bearer",
		"expires_at": expires.UTC(),
	})
}
