package pa

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"souq_back_end/internal/cart"
	"souq_back_end/internal/checkout"
	"souq_back_end/internal/inventory"
	"souq_back_end/internal/models"
	"souq_back_end/internal/payment"
	"souq_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

var Checkout *checkout.Service

// Init branche le service de checkout (appelé au démarrage)
func Init(svc *checkout.Service) {
	Checkout = svc
}

//
// 💵 POST /api/orders/:cartId — commande en espèces, payée à la livraison
//
func CreateCashOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")
	cartID := c.Param("cartId")

	var input struct {
		ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Adresse de livraison requise"})
		return
	}

	order, err := Checkout.CreateCashOrder(context.Background(), userID, email, cartID, input.ShippingAddress)
	if err != nil {
		checkoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Commande créée",
		"order":   order,
	})
}

//
// 💳 GET /api/orders/checkout-session/:cartId — session Stripe pour paiement carte
//
func CheckoutSession(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")
	name := c.GetString("name")
	cartID := c.Param("cartId")

	addr := models.ShippingAddress{
		Details:    c.Query("details"),
		Phone:      c.Query("phone"),
		City:       c.Query("city"),
		PostalCode: c.Query("postalCode"),
	}

	session, err := Checkout.CreateCheckoutSession(context.Background(), userID, email, name, cartID, addr)
	if err != nil {
		checkoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"session": session,
	})
}

//
// 🪝 POST /webhook-checkout — callback Stripe, hors authentification
//
func StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corps de requête illisible"})
		return
	}

	event, err := Checkout.Provider().VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Println("⚠️ Signature webhook invalide:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
		return
	}

	order, err := Checkout.HandlePaymentEvent(context.Background(), event)
	if err != nil {
		// Stripe réessaie sur tout code non-2xx
		log.Println("❌ Traitement webhook échoué:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Traitement échoué"})
		return
	}

	if order == nil {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "order_id": order.ID.String()})
}

//
// ✅ PUT /api/orders/:orderId/pay — marquer payée (admin/manager)
//
func PayOrder(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	order, err := Checkout.MarkPaid(context.Background(), orderID)
	if err != nil {
		checkoutError(c, err)
		return
	}

	notifyStatus(c, order, "paid")
	c.JSON(http.StatusOK, gin.H{"message": "Commande marquée payée", "order": order})
}

//
// 📦 PUT /api/orders/:orderId/deliver — marquer livrée (admin/manager)
//
func DeliverOrder(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	order, err := Checkout.MarkDelivered(context.Background(), orderID)
	if err != nil {
		checkoutError(c, err)
		return
	}

	notifyStatus(c, order, "delivered")
	c.JSON(http.StatusOK, gin.H{"message": "Commande marquée livrée", "order": order})
}

// notifyStatus envoie l'email de statut sans bloquer la réponse
func notifyStatus(c *gin.Context, order *models.Order, status string) {
	email := c.Query("email")
	if email == "" {
		return
	}
	go utils.SendOrderStatusEmail(order, email, status)
}

// checkoutError traduit les erreurs du pipeline de commande en réponses HTTP
func checkoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Panier introuvable ou déjà consommé"})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
	case errors.Is(err, checkout.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
	case errors.Is(err, checkout.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
	case errors.Is(err, inventory.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant pour un des articles"})
	case errors.Is(err, inventory.ErrUnknownProduct):
		c.JSON(http.StatusConflict, gin.H{"error": "Un des produits n'existe plus"})
	case errors.Is(err, payment.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
	default:
		log.Println("❌ Erreur checkout:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la commande"})
	}
}
