package product

import (
	"net/http"

	"souq_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// 🔍 GET /api/products/search?q=...
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre 'q' requis"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recherche indisponible"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results":  len(results),
		"products": results,
	})
}
