package user

import (
	"context"
	"errors"
	"log"
	"net/http"

	"souq_back_end/internal/checkout"
	"souq_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

var Orders *checkout.ScyllaOrderStore

// InitOrders branche le store de commandes (appelé au démarrage)
func InitOrders(orders *checkout.ScyllaOrderStore) {
	Orders = orders
}

// ✅ Récupère toutes les commandes de l'utilisateur connecté
func GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")

	orders, err := Orders.ListByUser(context.Background(), userID)
	if err != nil {
		log.Println("❌ Erreur récupération commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ✅ Récupère une commande précise (propriétaire uniquement)
func GetOrder(c *gin.Context) {
	userID := c.GetString("user_id")

	orderID, err := gocql.ParseUUID(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	order, err := Orders.GetByID(context.Background(), orderID)
	if errors.Is(err, checkout.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
		return
	}

	if order.UserID != userID && c.GetString("role") == models.RoleUser {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}

	c.JSON(http.StatusOK, order)
}
