package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"souq_back_end/internal/models"
	"souq_back_end/internal/pricing"
)

var (
	ErrCartNotFound    = errors.New("panier introuvable")
	ErrItemNotFound    = errors.New("article introuvable dans le panier")
	ErrInvalidQuantity = errors.New("quantité invalide (minimum 1)")
	ErrCouponExpired   = errors.New("coupon expiré")
	ErrCartConflict    = errors.New("conflit de modification concurrente du panier")
)

// New crée un panier vide pour un utilisateur.
func New(userID string) *models.Cart {
	return &models.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     []models.CartItem{},
		UpdatedAt: time.Now(),
	}
}

// AddItem ajoute un produit au panier. Si un article avec le même couple
// (produit, couleur) existe déjà, sa quantité est incrémentée de 1 ; sinon un
// nouvel article est ajouté avec le prix du produit figé au moment de l'ajout.
func AddItem(c *models.Cart, product *models.Product, color string) {
	for i := range c.Items {
		if c.Items[i].ProductID == product.ID.String() && c.Items[i].Color == color {
			c.Items[i].Quantity++
			recalc(c)
			return
		}
	}

	imageURL := ""
	if len(product.ImageURLs) > 0 {
		imageURL = product.ImageURLs[0]
	}

	c.Items = append(c.Items, models.CartItem{
		ID:        uuid.NewString(),
		ProductID: product.ID.String(),
		Name:      product.Name,
		Color:     color,
		Price:     product.Price,
		Quantity:  1,
		ImageURL:  imageURL,
	})
	recalc(c)
}

// SetItemQuantity fixe la quantité d'un article existant (minimum 1).
func SetItemQuantity(c *models.Cart, itemID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			recalc(c)
			return nil
		}
	}
	return ErrItemNotFound
}

// RemoveItem supprime un article par identifiant.
func RemoveItem(c *models.Cart, itemID string) error {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			recalc(c)
			return nil
		}
	}
	return ErrItemNotFound
}

// Clear vide tous les articles du panier.
func Clear(c *models.Cart) {
	c.Items = []models.CartItem{}
	recalc(c)
}

// ApplyCoupon applique un coupon non expiré sur le total courant du panier.
// La validité est évaluée à l'instant de l'appel, jamais en cache.
func ApplyCoupon(c *models.Cart, coupon *models.Coupon, now time.Time) error {
	if !coupon.Expire.After(now) {
		return ErrCouponExpired
	}

	discounted, err := pricing.ApplyDiscount(c.TotalPrice, coupon.Discount)
	if err != nil {
		return err
	}
	c.TotalPriceAfterDiscount = &discounted
	return nil
}

// recalc recalcule le total et invalide toute réduction précédente :
// un coupon doit être ré-appliqué après chaque changement d'articles.
func recalc(c *models.Cart) {
	c.TotalPrice = pricing.CalcCartTotal(c.Items)
	c.TotalPriceAfterDiscount = nil
}
