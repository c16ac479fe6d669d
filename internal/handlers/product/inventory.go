package product

import (
	"context"
	"errors"
	"net/http"

	"souq_back_end/internal/cache"
	"souq_back_end/internal/inventory"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

var Stock inventory.Applier

// InitStock branche l'applicateur de stock (appelé au démarrage)
func InitStock(applier inventory.Applier) {
	Stock = applier
}

//
// 📦 POST /api/products/stock — ajustement groupé (Admin/Manager)
//
// Tous les deltas passent ou aucun : un stock qui deviendrait négatif
// rejette l'ensemble de la requête.
func BulkAdjustStock(c *gin.Context) {
	var req struct {
		Deltas []inventory.Delta `json:"deltas" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	adj := inventory.BulkAdjustment{
		OrderID: gocql.TimeUUID(), // identifiant de l'opération dans stock_movements
		UserID:  c.GetString("user_id"),
		Deltas:  req.Deltas,
	}
	if err := adj.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Stock.Apply(context.Background(), adj); err != nil {
		switch {
		case errors.Is(err, inventory.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant, ajustement refusé"})
		case errors.Is(err, inventory.ErrUnknownProduct):
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit inconnu dans l'ajustement"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajustement stock"})
		}
		return
	}

	for _, d := range adj.Deltas {
		cache.InvalidateProduct(d.ProductID.String())
	}
	invalidateProductList()

	c.JSON(http.StatusOK, gin.H{"message": "Stock ajusté", "operation_id": adj.OrderID.String()})
}
