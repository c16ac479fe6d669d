package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Coupon de réduction en pourcentage, limité dans le temps.
type Coupon struct {
	ID        gocql.UUID `json:"id"`
	Name      string     `json:"name"` // code unique, sensible à la casse
	Discount  float64    `json:"discount"` // pourcentage [0,100]
	Expire    time.Time  `json:"expire"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
