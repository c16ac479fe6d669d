package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"souq_back_end/internal/cache"
	"souq_back_end/internal/cart"
	"souq_back_end/internal/coupon"
	"souq_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

var (
	Carts   *cart.RedisStore
	Coupons *coupon.ScyllaStore
)

// Init branche les stores partagés (appelé au démarrage)
func Init(carts *cart.RedisStore, coupons *coupon.ScyllaStore) {
	Carts = carts
	Coupons = coupons
}

//
// 🟢 GET /api/cart
//
func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	ct, err := Carts.GetByUser(context.Background(), userID)
	if errors.Is(err, cart.ErrCartNotFound) {
		c.JSON(http.StatusOK, gin.H{"items": []models.CartItem{}})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	c.JSON(http.StatusOK, ct)
}

//
// 🟢 POST /api/cart/add
//
func AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Color     string `json:"color"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	product, err := cache.GetProductFromCache(input.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	ct, err := Carts.Update(context.Background(), userID, true, func(m *models.Cart) error {
		cart.AddItem(m, product, input.Color)
		return nil
	})
	if err != nil {
		cartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit ajouté au panier",
		"cart":    ct,
	})
}

//
// 🔁 PUT /api/cart/:itemId
//
func UpdateCartItem(c *gin.Context) {
	userID := c.GetString("user_id")
	itemID := c.Param("itemId")

	var input struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ct, err := Carts.Update(context.Background(), userID, false, func(m *models.Cart) error {
		return cart.SetItemQuantity(m, itemID, input.Quantity)
	})
	if err != nil {
		cartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quantité mise à jour",
		"cart":    ct,
	})
}

//
// ❌ DELETE /api/cart/:itemId
//
func RemoveFromCart(c *gin.Context) {
	userID := c.GetString("user_id")
	itemID := c.Param("itemId")

	ct, err := Carts.Update(context.Background(), userID, false, func(m *models.Cart) error {
		return cart.RemoveItem(m, itemID)
	})
	if err != nil {
		cartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit supprimé du panier",
		"cart":    ct,
	})
}

//
// 🧹 DELETE /api/cart
//
func ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := Carts.DeleteByUser(context.Background(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du vidage du panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé avec succès"})
}

//
// 🎟️ POST /api/cart/apply-coupon
//
func ApplyCoupon(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		Coupon string `json:"coupon" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code coupon requis"})
		return
	}

	cp, err := Coupons.FindValid(context.Background(), input.Coupon)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon invalide ou expiré"})
		return
	}

	ct, err := Carts.Update(context.Background(), userID, false, func(m *models.Cart) error {
		return cart.ApplyCoupon(m, cp, time.Now())
	})
	if err != nil {
		cartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon appliqué",
		"cart":    ct,
	})
}

// cartError traduit les erreurs du domaine panier en réponses HTTP
func cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Panier introuvable"})
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Article introuvable dans le panier"})
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
	case errors.Is(err, cart.ErrCouponExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon expiré"})
	case errors.Is(err, cart.ErrCartConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Panier modifié en parallèle, réessayez"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur panier"})
	}
}
