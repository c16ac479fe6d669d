package product

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"souq_back_end/internal/database"
	"souq_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// 🟢 Créer une catégorie
func CreateCategory(c *gin.Context) {
	var cat models.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if cat.Name == "" || cat.Slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les champs 'name' et 'slug' sont obligatoires"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	cat.ID = gocql.TimeUUID()
	now := time.Now()
	cat.CreatedAt = now
	cat.UpdatedAt = now

	if err := session.Query(`INSERT INTO categories (category_id, name, slug, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.Slug, cat.CreatedAt, cat.UpdatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création catégorie"})
		return
	}

	database.Redis.Del(context.Background(), "categories:all")
	c.JSON(http.StatusCreated, cat)
}

// 🔵 Lister les catégories
func GetAllCategories(c *gin.Context) {
	ctx := context.Background()
	cacheKey := "categories:all"

	if val, err := database.Redis.Get(ctx, cacheKey).Result(); err == nil && val != "" {
		var cached []models.Category
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT category_id, name, slug, created_at, updated_at FROM categories`).Iter()

	categories := []models.Category{}
	var cat models.Category
	for iter.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.CreatedAt, &cat.UpdatedAt) {
		categories = append(categories, cat)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catégories"})
		return
	}

	if raw, err := json.Marshal(categories); err == nil {
		database.Redis.Set(ctx, cacheKey, raw, 10*time.Minute)
	}

	c.JSON(http.StatusOK, categories)
}

// 🟠 Mettre à jour une catégorie
func UpdateCategory(c *gin.Context) {
	categoryID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
		return
	}

	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.Name == "" && req.Slug == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rien à modifier"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var cat models.Category
	if err := session.Query(`SELECT category_id, name, slug, created_at, updated_at FROM categories WHERE category_id = ?`, categoryID).
		Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}

	if req.Name != "" {
		cat.Name = req.Name
	}
	if req.Slug != "" {
		cat.Slug = req.Slug
	}
	cat.UpdatedAt = time.Now()

	if err := session.Query(`UPDATE categories SET name = ?, slug = ?, updated_at = ? WHERE category_id = ?`,
		cat.Name, cat.Slug, cat.UpdatedAt, categoryID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour catégorie"})
		return
	}

	database.Redis.Del(context.Background(), "categories:all")
	c.JSON(http.StatusOK, cat)
}

// 🔴 Supprimer une catégorie
func DeleteCategory(c *gin.Context) {
	categoryID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query(`DELETE FROM categories WHERE category_id = ?`, categoryID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression catégorie"})
		return
	}

	database.Redis.Del(context.Background(), "categories:all")
	c.JSON(http.StatusOK, gin.H{"message": "Catégorie supprimée"})
}
