package pa

import (
	"log"
	"net/http"
	"strings"
	"time"

	"souq_back_end/internal/database"
	"souq_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// CreateCoupon - Créer un nouveau coupon (Admin/Manager seulement)
func CreateCoupon(c *gin.Context) {
	var req struct {
		Name     string    `json:"name" binding:"required"`
		Discount float64   `json:"discount" binding:"required"`
		Expire   time.Time `json:"expire" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	if req.Discount <= 0 || req.Discount > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pourcentage doit être entre 1 et 100"})
		return
	}
	if !req.Expire.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date d'expiration déjà passée"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	name := strings.TrimSpace(req.Name)

	// Code déjà pris ?
	var existing gocql.UUID
	if err := session.Query(`SELECT id FROM coupons WHERE name = ? LIMIT 1`, name).Scan(&existing); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un coupon existe déjà avec ce code"})
		return
	}

	now := time.Now()
	coupon := models.Coupon{
		ID:        gocql.TimeUUID(),
		Name:      name,
		Discount:  req.Discount,
		Expire:    req.Expire,
		CreatedBy: c.GetString("user_id"),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := session.Query(`INSERT INTO coupons (name, id, discount, expire, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		coupon.Name, coupon.ID, coupon.Discount, coupon.Expire,
		coupon.CreatedBy, coupon.CreatedAt, coupon.UpdatedAt).Exec(); err != nil {
		log.Println("❌ Erreur création coupon:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création coupon"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Coupon créé", "coupon": coupon})
}

// GetCoupons - Lister tous les coupons (Admin/Manager seulement)
func GetCoupons(c *gin.Context) {
	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT name, id, discount, expire, created_by, created_at, updated_at FROM coupons`).Iter()

	coupons := []models.Coupon{}
	var cp models.Coupon
	for iter.Scan(&cp.Name, &cp.ID, &cp.Discount, &cp.Expire, &cp.CreatedBy, &cp.CreatedAt, &cp.UpdatedAt) {
		coupons = append(coupons, cp)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture coupons"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

// UpdateCoupon - Modifier la remise ou l'expiration d'un coupon
func UpdateCoupon(c *gin.Context) {
	name := c.Param("name")

	var req struct {
		Discount *float64   `json:"discount"`
		Expire   *time.Time `json:"expire"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if req.Discount == nil && req.Expire == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rien à modifier"})
		return
	}
	if req.Discount != nil && (*req.Discount <= 0 || *req.Discount > 100) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pourcentage doit être entre 1 et 100"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var cp models.Coupon
	err = session.Query(`SELECT name, id, discount, expire, created_by, created_at, updated_at FROM coupons WHERE name = ? LIMIT 1`, name).
		Scan(&cp.Name, &cp.ID, &cp.Discount, &cp.Expire, &cp.CreatedBy, &cp.CreatedAt, &cp.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon introuvable"})
		return
	}

	if req.Discount != nil {
		cp.Discount = *req.Discount
	}
	if req.Expire != nil {
		cp.Expire = *req.Expire
	}
	cp.UpdatedAt = time.Now()

	if err := session.Query(`UPDATE coupons SET discount = ?, expire = ?, updated_at = ? WHERE name = ?`,
		cp.Discount, cp.Expire, cp.UpdatedAt, name).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour coupon"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon mis à jour", "coupon": cp})
}

// DeleteCoupon - Supprimer un coupon
func DeleteCoupon(c *gin.Context) {
	name := c.Param("name")

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query(`DELETE FROM coupons WHERE name = ?`, name).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression coupon"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon supprimé"})
}
