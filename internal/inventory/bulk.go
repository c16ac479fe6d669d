package inventory

import (
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"souq_back_end/internal/models"
)

var (
	ErrEmptyAdjustment   = errors.New("ajustement de stock vide")
	ErrUnknownProduct    = errors.New("produit inconnu")
	ErrInsufficientStock = errors.New("stock insuffisant")
	ErrNegativeSold      = errors.New("le compteur de ventes ne peut pas diminuer")
)

// Delta est la variation de stock et de ventes pour un produit.
type Delta struct {
	ProductID     gocql.UUID `json:"product_id"`
	QuantityDelta int        `json:"quantity_delta"` // négatif pour une vente
	SoldDelta     int        `json:"sold_delta"`     // toujours ≥ 0
}

// BulkAdjustment regroupe les deltas d'une commande, appliqués comme
// une seule opération logique (tout ou rien).
type BulkAdjustment struct {
	OrderID gocql.UUID
	UserID  string
	Deltas  []Delta
}

// FromOrderItems construit l'ajustement d'une commande : pour chaque article,
// stock décrémenté de la quantité commandée, ventes incrémentées d'autant.
func FromOrderItems(orderID gocql.UUID, userID string, items []models.OrderItem) (BulkAdjustment, error) {
	adj := BulkAdjustment{OrderID: orderID, UserID: userID}
	for _, item := range items {
		pid, err := gocql.ParseUUID(item.ProductID)
		if err != nil {
			return BulkAdjustment{}, fmt.Errorf("id produit invalide %q: %w", item.ProductID, err)
		}
		adj.Deltas = append(adj.Deltas, Delta{
			ProductID:     pid,
			QuantityDelta: -item.Quantity,
			SoldDelta:     item.Quantity,
		})
	}
	return adj, adj.Validate()
}

// Validate contrôle la forme de l'ajustement avant toute soumission.
func (b BulkAdjustment) Validate() error {
	if len(b.Deltas) == 0 {
		return ErrEmptyAdjustment
	}
	var zero gocql.UUID
	for _, d := range b.Deltas {
		if d.ProductID == zero {
			return ErrUnknownProduct
		}
		if d.SoldDelta < 0 {
			return ErrNegativeSold
		}
	}
	return nil
}

// Levels est l'état courant (stock, ventes) d'un produit.
type Levels struct {
	Stock int
	Sold  int
	Name  string
}

// Update est une écriture planifiée, prête à entrer dans le batch.
type Update struct {
	ProductID gocql.UUID
	NewStock  int
	NewSold   int
	PrevStock int
}

// Plan calcule les nouveaux niveaux à partir des niveaux courants.
// Un delta qui rendrait le stock négatif est rejeté, jamais tronqué :
// une application partielle désynchroniserait stock et ventes.
func Plan(levels map[gocql.UUID]Levels, adj BulkAdjustment) ([]Update, error) {
	if err := adj.Validate(); err != nil {
		return nil, err
	}

	updates := make([]Update, 0, len(adj.Deltas))
	for _, d := range adj.Deltas {
		lv, ok := levels[d.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, d.ProductID)
		}

		newStock := lv.Stock + d.QuantityDelta
		if newStock < 0 {
			return nil, fmt.Errorf("%w pour %s (disponible: %d, demandé: %d)",
				ErrInsufficientStock, lv.Name, lv.Stock, -d.QuantityDelta)
		}

		updates = append(updates, Update{
			ProductID: d.ProductID,
			NewStock:  newStock,
			NewSold:   lv.Sold + d.SoldDelta,
			PrevStock: lv.Stock,
		})
	}
	return updates, nil
}
