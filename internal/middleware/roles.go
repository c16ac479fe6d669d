package middleware

import (
	"net/http"

	"souq_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireRoles refuse la requête si le rôle du token n'est pas dans la liste.
// Le rôle doit être l'une des valeurs connues, tout le reste est rejeté.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString("role")
		if !models.ValidRole(role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Rôle inconnu"})
			c.Abort()
			return
		}
		if _, ok := allowed[role]; !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé"})
			c.Abort()
			return
		}
		c.Next()
	}
}
