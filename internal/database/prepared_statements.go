package database

import (
	"log"

	"github.com/gocql/gocql"
)

// Requêtes fréquentes, préparées au démarrage pour éviter le premier aller-retour.
const (
	QueryUserByEmail = `SELECT user_id FROM users_by_email WHERE email = ? LIMIT 1`
	QueryUserByID    = `SELECT user_id, name, email, password, role, active, created_at FROM users WHERE user_id = ? LIMIT 1`

	QueryProductByID   = `SELECT product_id, name, description, price, stock, sold, colors, category_id, image_urls, tags, is_active, created_at, updated_at FROM products WHERE product_id = ? LIMIT 1`
	QueryProductLevels = `SELECT stock, sold, name FROM products WHERE product_id = ?`

	QueryOrdersByUser = `SELECT order_id FROM orders_by_user WHERE user_id = ?`
	QueryCouponByName = `SELECT id, name, discount, expire, created_by, created_at, updated_at FROM coupons WHERE name = ? LIMIT 1`
)

// InitPreparedStatements force la préparation des requêtes chaudes sur chaque keyspace.
func InitPreparedStatements() {
	warm := func(get func() (*gocql.Session, error), label string, queries ...string) {
		session, err := get()
		if err != nil {
			log.Printf("⚠️ Préparation ignorée pour %s: %v", label, err)
			return
		}
		for _, q := range queries {
			// Exec avec des valeurs bidon prépare et met en cache le statement.
			_ = session.Query(q, "00000000-0000-0000-0000-000000000000").Consistency(gocql.One).Exec()
		}
	}

	warm(GetUsersSession, "users", QueryUserByEmail)
	warm(GetProductsSession, "products", QueryProductLevels)
	warm(GetOrdersSession, "orders", QueryOrdersByUser, QueryCouponByName)

	log.Println("✅ Requêtes préparées initialisées")
}
