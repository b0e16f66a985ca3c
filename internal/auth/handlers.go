package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// VerifyHandler exposes POST verification of an identity token,
// returning the profile the client should join boards with.
func VerifyHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Token string `json:"token"`
		}
		if err := c.BindJSON(&req); err != nil || req.Token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}

		identity, err := svc.Verify(req.Token)
		if errors.Is(err, ErrInvalidToken) {
			log.Warn().Str("module", "auth").Msg("token verification failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.JSON(http.StatusOK, identity)
	}
}
