package main

import (
	"context"
	"log"
	"os"

	"souq_back_end/internal/cart"
	"souq_back_end/internal/checkout"
	"souq_back_end/internal/config"
	"souq_back_end/internal/coupon"
	"souq_back_end/internal/database"
	pa "souq_back_end/internal/handlers/payement"
	"souq_back_end/internal/handlers/product"
	"souq_back_end/internal/handlers/user"
	"souq_back_end/internal/inventory"
	"souq_back_end/internal/payment"
	"souq_back_end/internal/routes"
	"souq_back_end/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
)

func main() {
	config.Load()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Fatal("❌ Impossible d'initialiser Stripe : clé manquante")
	}
	log.Println("✅ Stripe initialisé")

	database.ConnectDatabases()
	database.InitPreparedStatements()
	warmupRedisCache()

	wireHandlers()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("FRONTEND_URL")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Souq lancé sur le port", port)
	r.Run(":" + port)
}

// wireHandlers assemble les stores et le service de checkout
func wireHandlers() {
	carts := cart.NewRedisStore(database.Redis)
	coupons := coupon.NewScyllaStore()
	orders := checkout.NewScyllaOrderStore()
	applier := inventory.NewScyllaApplier()

	provider := payment.NewStripeProvider(os.Getenv("STRIPE_WEBHOOK_SECRET"))

	svc := checkout.NewService(
		carts,
		orders,
		applier,
		checkout.NewScyllaEventLog(),
		checkout.NewScyllaUserDirectory(),
		provider,
		utils.MailNotifier{},
		checkout.Config{
			TaxPrice:      config.TaxPrice(),
			ShippingPrice: config.ShippingPrice(),
			Currency:      config.Currency(),
			SuccessURL:    config.BaseURL() + "/checkout/success",
			CancelURL:     config.BaseURL() + "/checkout/cancel",
		},
	)

	user.Init(carts, coupons)
	user.InitOrders(orders)
	pa.Init(svc)
	product.InitStock(applier)
}

// warmupRedisCache établit la connexion avant la première requête
func warmupRedisCache() {
	if err := database.Redis.Ping(context.Background()).Err(); err == nil {
		log.Println("✅ Cache Redis pré-chauffé")
	}
}
