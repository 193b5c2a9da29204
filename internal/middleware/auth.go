package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "userID"
	ContextRoleID = "roleID"
)

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Ambil Header Authorization
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortResponse(c, http.StatusUnauthorized, "missing authorization token")
			return
		}

		// 2. Format harus "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.AbortResponse(c, http.StatusUnauthorized, "authorization header must be: Bearer <token>")
			return
		}

		// 3. Validasi Token
		claims, err := utils.ValidateToken(secret, parts[1])
		if err != nil || claims.UserID == "" {
			utils.AbortResponse(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRoleID, claims.RoleID)
		c.Next()
	}
}

// CurrentActor reads what AuthMiddleware stored.
func CurrentActor(c *gin.Context) models.Actor {
	return models.Actor{ID: c.GetString(ContextUserID), RoleID: c.GetUint(ContextRoleID)}
}

// RequireRoles lets the listed roles through and answers 403 to the rest.
func RequireRoles(roles ...uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetUint(ContextRoleID)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		utils.AbortResponse(c, http.StatusForbidden, "access denied for this role")
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}

// FinanceOnly: admin juga boleh akses menu finance
func FinanceOnly() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleFinance)
}

func PartnerOnly() gin.HandlerFunc {
	return RequireRoles(models.RolePartner)
}
