package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Review struct {
	ID        gocql.UUID `json:"id"`
	ProductID gocql.UUID `json:"product_id"`
	UserID    string     `json:"user_id"`
	Rating    int        `json:"rating"` // 1 à 5
	Title     string     `json:"title"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
