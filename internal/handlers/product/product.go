package product

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"souq_back_end/internal/cache"
	"souq_back_end/internal/database"
	"souq_back_end/internal/models"
	"souq_back_end/internal/services"
)

const productListCacheTTL = 5 * time.Minute

func CreateProduct(c *gin.Context) {
	var p models.Product

	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if p.Name == "" || p.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les champs 'name' et 'price' sont obligatoires"})
		return
	}
	if p.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock initial négatif"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// ✅ Vérifie la catégorie dans ScyllaDB
	if p.CategoryID != (gocql.UUID{}) {
		var categoryName string
		if err := session.Query(`SELECT name FROM categories WHERE category_id = ?`, p.CategoryID).Scan(&categoryName); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie introuvable"})
			return
		}
	}

	p.ID = gocql.TimeUUID()
	p.Sold = 0
	p.IsActive = true
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `INSERT INTO products (product_id, name, description, price, stock, sold, colors, category_id, image_urls, tags, is_active, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if err := session.Query(query, p.ID, p.Name, p.Description, p.Price, p.Stock, p.Sold,
		p.Colors, p.CategoryID, p.ImageURLs, p.Tags, p.IsActive, p.CreatedAt, p.UpdatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit: " + err.Error()})
		return
	}

	// 🔄 Indexation Elasticsearch
	go services.IndexProduct(p)
	invalidateProductList()

	c.JSON(http.StatusCreated, p)
}

func GetAllProducts(c *gin.Context) {
	ctx := context.Background()
	cacheKey := "products:all"

	// ✅ Vérifie le cache Redis
	if val, err := database.Redis.Get(ctx, cacheKey).Result(); err == nil && val != "" {
		var cached []models.Product
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

	iter := session.Query(`SELECT product_id, name, description, price, stock, sold, colors, category_id, image_urls, tags, is_active, created_at, updated_at FROM products`).Iter()

	products := []models.Product{}
	for {
		var p models.Product
		if !iter.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Sold,
			&p.Colors, &p.CategoryID, &p.ImageURLs, &p.Tags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt) {
			break
		}
		if p.IsActive {
			products = append(products, p)
		}
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}

	if raw, err := json.Marshal(products); err == nil {
		database.Redis.Set(ctx, cacheKey, raw, productListCacheTTL)
	}

	c.JSON(http.StatusOK, products)
}

func GetProduct(c *gin.Context) {
	p, err := cache.GetProductFromCache(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func UpdateProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var req struct {
		Name        *string   `json:"name"`
		Description *string   `json:"description"`
		Price       *float64  `json:"price"`
		Colors      *[]string `json:"colors"`
		ImageURLs   *[]string `json:"image_urls"`
		Tags        *[]string `json:"tags"`
		IsActive    *bool     `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if req.Price != nil && *req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prix invalide"})
		return
	}

	p, err := cache.GetProductFromCache(productID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Colors != nil {
		p.Colors = *req.Colors
	}
	if req.ImageURLs != nil {
		p.ImageURLs = *req.ImageURLs
	}
	if req.Tags != nil {
		p.Tags = *req.Tags
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.UpdatedAt = time.Now()

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	query := `UPDATE products SET name = ?, description = ?, price = ?, colors = ?, image_urls = ?, tags = ?, is_active = ?, updated_at = ? WHERE product_id = ?`
	if err := session.Query(query, p.Name, p.Description, p.Price, p.Colors,
		p.ImageURLs, p.Tags, p.IsActive, p.UpdatedAt, p.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	cache.InvalidateProduct(p.ID.String())
	invalidateProductList()
	go services.IndexProduct(*p)

	c.JSON(http.StatusOK, p)
}

func DeleteProduct(c *gin.Context) {
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

	if err := session.Query(`DELETE FROM products WHERE product_id = ?`, productID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	cache.InvalidateProduct(productID.String())
	invalidateProductList()
	go services.RemoveProduct(productID.String())

	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}

func invalidateProductList() {
	database.Redis.Del(context.Background(), "products:all")
}
