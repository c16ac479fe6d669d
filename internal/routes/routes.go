package routes

import (
	pa "souq_back_end/internal/handlers/payement"
	"souq_back_end/internal/handlers/product"
	"souq_back_end/internal/handlers/user"
	"souq_back_end/internal/middleware"
	"souq_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Webhook Stripe : hors /api, hors authentification (signature vérifiée à part)
	r.POST("/webhook-checkout", pa.StripeWebhook)

	api := r.Group("/api", middleware.APIRateLimit())

	// Auth
	auth := api.Group("/auth")
	auth.POST("/register", middleware.RegisterRateLimit(), user.CreateUser)
	auth.POST("/login", middleware.LoginRateLimit(), user.Login)
	auth.GET("/me", middleware.AuthRequired(), user.GetMe)

	// Produits (lecture publique)
	products := api.Group("/products")
	products.GET("", product.GetAllProducts)
	products.GET("/search", middleware.SearchRateLimit(), product.SearchProducts)
	products.GET("/:id", product.GetProduct)
	products.GET("/:id/reviews", product.GetProductReviews)

	// Produits (écriture admin/manager)
	productsAdmin := products.Group("", middleware.AuthRequired(),
		middleware.RequireRoles(models.RoleAdmin, models.RoleManager))
	productsAdmin.POST("", product.CreateProduct)
	productsAdmin.POST("/stock", product.BulkAdjustStock)
	productsAdmin.PUT("/:id", product.UpdateProduct)
	productsAdmin.DELETE("/:id", product.DeleteProduct)

	// Avis (acheteurs authentifiés)
	products.POST("/:id/reviews", middleware.AuthRequired(), product.CreateReview)
	products.DELETE("/:id/reviews/:reviewId", middleware.AuthRequired(), product.DeleteReview)

	// Catégories
	categories := api.Group("/categories")
	categories.GET("", product.GetAllCategories)
	categoriesAdmin := categories.Group("", middleware.AuthRequired(),
		middleware.RequireRoles(models.RoleAdmin, models.RoleManager))
	categoriesAdmin.POST("", product.CreateCategory)
	categoriesAdmin.PUT("/:id", product.UpdateCategory)
	categoriesAdmin.DELETE("/:id", product.DeleteCategory)

	// Panier (utilisateur connecté)
	cart := api.Group("/cart", middleware.AuthRequired())
	cart.GET("", user.GetCart)
	cart.POST("/add", middleware.CartRateLimit(), user.AddToCart)
	cart.POST("/apply-coupon", user.ApplyCoupon)
	cart.PUT("/:itemId", user.UpdateCartItem)
	cart.DELETE("/:itemId", user.RemoveFromCart)
	cart.DELETE("", user.ClearCart)

	// Commandes
	orders := api.Group("/orders", middleware.AuthRequired())
	orders.GET("", user.GetMyOrders)
	orders.GET("/checkout-session/:cartId", pa.CheckoutSession)
	orders.GET("/:orderId", user.GetOrder)
	orders.POST("/:cartId", pa.CreateCashOrder)

	ordersAdmin := orders.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleManager))
	ordersAdmin.GET("/all", pa.GetAllOrders)
	ordersAdmin.PUT("/:orderId/pay", pa.PayOrder)
	ordersAdmin.PUT("/:orderId/deliver", pa.DeliverOrder)

	// Coupons (admin/manager)
	coupons := api.Group("/coupons", middleware.AuthRequired(),
		middleware.RequireRoles(models.RoleAdmin, models.RoleManager))
	coupons.POST("", pa.CreateCoupon)
	coupons.GET("", pa.GetCoupons)
	coupons.PUT("/:name", pa.UpdateCoupon)
	coupons.DELETE("/:name", pa.DeleteCoupon)
}
