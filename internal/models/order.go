package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// Order est un instantané immuable du panier au moment du checkout :
// ni les articles ni le prix total ne sont modifiés après création.
type Order struct {
	ID              gocql.UUID      `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []OrderItem     `json:"items"`
	TotalOrderPrice float64         `json:"total_order_price"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"` // "cash" ou "card"
	IsPaid          bool            `json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	IsDelivered     bool            `json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Color     string  `json:"color,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type ShippingAddress struct {
	Details    string `json:"details"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}
