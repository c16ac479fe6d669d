package cache

import (
	"context"
	"encoding/json"
	"time"

	"souq_back_end/internal/database"
	"souq_back_end/internal/models"

	"github.com/gocql/gocql"
)

const (
	UserCacheTTL    = 5 * time.Minute
	ProductCacheTTL = 10 * time.Minute
)

// GetProductFromCache récupère un produit depuis Redis ou ScyllaDB
func GetProductFromCache(productID string) (*models.Product, error) {
	ctx := context.Background()
	key := "product:" + productID

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var p models.Product
		if json.Unmarshal([]byte(data), &p) == nil {
			return &p, nil
		}
	}

	// 2. Récupérer de ScyllaDB
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	pid, err := gocql.ParseUUID(productID)
	if err != nil {
		return nil, err
	}

	var p models.Product
	err = session.Query(database.QueryProductByID, pid).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Sold,
		&p.Colors, &p.CategoryID, &p.ImageURLs, &p.Tags, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	if raw, err := json.Marshal(p); err == nil {
		database.Redis.Set(ctx, key, raw, ProductCacheTTL)
	}

	return &p, nil
}

// InvalidateProduct purge le cache après une écriture produit (prix, stock)
func InvalidateProduct(productID string) {
	database.Redis.Del(context.Background(), "product:"+productID)
}

// GetUserFromCache récupère un utilisateur depuis Redis ou ScyllaDB
func GetUserFromCache(userID string) (*models.User, error) {
	ctx := context.Background()
	key := "user:" + userID

	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var user models.User
		if json.Unmarshal([]byte(data), &user) == nil {
			return &user, nil
		}
	}

	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	uid, err := gocql.ParseUUID(userID)
	if err != nil {
		return nil, err
	}

	var user models.User
	var id gocql.UUID
	err = session.Query(database.QueryUserByID, uid).Scan(
		&id, &user.Name, &user.Email, &user.Password, &user.Role, &user.Active, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	user.ID = id.String()
	user.Password = ""

	if raw, err := json.Marshal(user); err == nil {
		database.Redis.Set(ctx, key, raw, UserCacheTTL)
	}

	return &user, nil
}

// InvalidateUser purge le cache utilisateur (changement de rôle, désactivation)
func InvalidateUser(userID string) {
	database.Redis.Del(context.Background(), "user:"+userID)
}
