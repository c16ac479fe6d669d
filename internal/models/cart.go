package models

import "time"

// Un seul panier actif par utilisateur (clé Redis cart:<user_id>).
// Version sert au contrôle optimiste des mutations concurrentes.
type Cart struct {
	ID                      string     `json:"id"`
	UserID                  string     `json:"user_id"`
	Items                   []CartItem `json:"items"`
	TotalPrice              float64    `json:"total_price"`
	TotalPriceAfterDiscount *float64   `json:"total_price_after_discount,omitempty"`
	Version                 int64      `json:"version"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Color     string  `json:"color,omitempty"`
	Price     float64 `json:"price"` // prix unitaire figé au moment de l'ajout
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url,omitempty"`
}
