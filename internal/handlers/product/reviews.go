package product

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"souq_back_end/internal/database"
	"souq_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// CreateReview crée un avis sur un produit (achat vérifié)
func CreateReview(c *gin.Context) {
	userID := c.GetString("user_id")

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Title   string `json:"title"`
		Comment string `json:"comment" binding:"required,min=10,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	// Vérifier que le produit existe
	productsSession, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var exists gocql.UUID
	if err := productsSession.Query(`SELECT product_id FROM products WHERE product_id = ?`, productID).Scan(&exists); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	// Vérifier que l'utilisateur a acheté ce produit
	if !hasPurchased(userID, productID.String()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Seuls les acheteurs peuvent laisser un avis"})
		return
	}

	now := time.Now()
	review := models.Review{
		ID:        gocql.TimeUUID(),
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := productsSession.Query(`INSERT INTO reviews (product_id, review_id, user_id, rating, title, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		review.ProductID, review.ID, review.UserID, review.Rating,
		review.Title, review.Comment, review.CreatedAt, review.UpdatedAt).Exec(); err != nil {
		log.Println("❌ Erreur création avis:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création avis"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Avis publié", "review": review})
}

// GetProductReviews liste les avis d'un produit
func GetProductReviews(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT product_id, review_id, user_id, rating, title, comment, created_at, updated_at
		FROM reviews WHERE product_id = ?`, productID).Iter()

	reviews := []models.Review{}
	var r models.Review
	for iter.Scan(&r.ProductID, &r.ID, &r.UserID, &r.Rating, &r.Title, &r.Comment, &r.CreatedAt, &r.UpdatedAt) {
		reviews = append(reviews, r)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture avis"})
		return
	}

	// Moyenne sur les avis retournés
	avg := 0.0
	if len(reviews) > 0 {
		sum := 0
		for _, rv := range reviews {
			sum += rv.Rating
		}
		avg = float64(sum) / float64(len(reviews))
	}

	c.JSON(http.StatusOK, gin.H{
		"results":        len(reviews),
		"average_rating": avg,
		"reviews":        reviews,
	})
}

// DeleteReview supprime un avis : son auteur, ou un admin/manager
func DeleteReview(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}
	reviewID, err := gocql.ParseUUID(c.Param("reviewId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID avis invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var ownerID string
	if err := session.Query(`SELECT user_id FROM reviews WHERE product_id = ? AND review_id = ?`,
		productID, reviewID).Scan(&ownerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Avis introuvable"})
		return
	}

	if !canDeleteReview(c.GetString("role"), c.GetString("user_id"), ownerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Vous ne pouvez supprimer que vos propres avis"})
		return
	}

	if err := session.Query(`DELETE FROM reviews WHERE product_id = ? AND review_id = ?`,
		productID, reviewID).Exec(); err != nil {
		log.Println("❌ Erreur suppression avis:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression avis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Avis supprimé"})
}

// canDeleteReview autorise l'auteur de l'avis et les rôles de modération
func canDeleteReview(role, requesterID, ownerID string) bool {
	if requesterID != "" && requesterID == ownerID {
		return true
	}
	return role == models.RoleAdmin || role == models.RoleManager
}

// hasPurchased parcourt les commandes de l'utilisateur à la recherche du produit
func hasPurchased(userID, productID string) bool {
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		return false
	}

	iter := ordersSession.Query(database.QueryOrdersByUser, userID).Iter()
	var orderID gocql.UUID
	orderIDs := []gocql.UUID{}
	for iter.Scan(&orderID) {
		orderIDs = append(orderIDs, orderID)
	}
	if err := iter.Close(); err != nil {
		return false
	}

	for _, id := range orderIDs {
		var itemsJSON string
		if err := ordersSession.Query(`SELECT items FROM orders WHERE id = ?`, id).Scan(&itemsJSON); err != nil {
			continue
		}
		var items []models.OrderItem
		if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
			continue
		}
		for _, item := range items {
			if item.ProductID == productID {
				return true
			}
		}
	}
	return false
}
