package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/zeenat-khan28/sports-dbms/internal/middleware"
	"github.com/zeenat-khan28/sports-dbms/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext resolves the audit actor identity, defaulting to "admin"
// when no claims are attached.
func actorFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil || claims.Email == "" {
		return "admin"
	}
	return claims.Email
}

// actorIDFromContext resolves the acting admin's user ID, 0 when no claims
// are attached.
func actorIDFromContext(c *gin.Context) int64 {
	claims := claimsFromContext(c)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
