package inventory

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"

	"souq_back_end/internal/database"
	"souq_back_end/internal/models"
)

// Applier applique un lot de deltas d'inventaire comme une opération logique unique.
type Applier interface {
	Apply(ctx context.Context, adj BulkAdjustment) error
}

// ScyllaApplier lit les niveaux courants, planifie les nouvelles valeurs et
// les écrit dans un batch logué (tout ou rien côté ScyllaDB), puis trace les
// mouvements de stock.
type ScyllaApplier struct{}

func NewScyllaApplier() *ScyllaApplier { return &ScyllaApplier{} }

func (a *ScyllaApplier) Apply(ctx context.Context, adj BulkAdjustment) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	levels := make(map[gocql.UUID]Levels, len(adj.Deltas))
	for _, d := range adj.Deltas {
		var lv Levels
		query := `SELECT stock, sold, name FROM products WHERE product_id = ?`
		if err := session.Query(query, d.ProductID).WithContext(ctx).Scan(&lv.Stock, &lv.Sold, &lv.Name); err != nil {
			return fmt.Errorf("%w: %s", ErrUnknownProduct, d.ProductID)
		}
		levels[d.ProductID] = lv
	}

	updates, err := Plan(levels, adj)
	if err != nil {
		return err
	}

	now := time.Now()
	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, u := range updates {
		batch.Query(`UPDATE products SET stock = ?, sold = ?, updated_at = ? WHERE product_id = ?`,
			u.NewStock, u.NewSold, now, u.ProductID)
	}

	if err := session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("échec batch inventaire: %w", err)
	}

	a.recordMovements(ctx, session, adj, updates, now)
	return nil
}

// recordMovements trace les ventes dans stock_movements. L'échec n'annule pas
// la commande, il est seulement journalisé (même politique que les alertes).
func (a *ScyllaApplier) recordMovements(ctx context.Context, session *gocql.Session, adj BulkAdjustment, updates []Update, now time.Time) {
	for _, u := range updates {
		orderID := adj.OrderID
		movement := models.StockMovement{
			ID:        gocql.TimeUUID(),
			ProductID: u.ProductID,
			Type:      "sale",
			Quantity:  u.NewStock - u.PrevStock,
			PrevStock: u.PrevStock,
			NewStock:  u.NewStock,
			Reason:    "commande " + orderID.String(),
			OrderID:   &orderID,
			UserID:    adj.UserID,
			CreatedAt: now,
		}

		query := `INSERT INTO stock_movements (id, product_id, type, quantity, prev_stock, new_stock, reason, order_id, user_id, created_at)
				  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		if err := session.Query(query,
			movement.ID, movement.ProductID, movement.Type, movement.Quantity,
			movement.PrevStock, movement.NewStock, movement.Reason, movement.OrderID,
			movement.UserID, movement.CreatedAt,
		).WithContext(ctx).Exec(); err != nil {
			log.Printf("⚠️ Erreur enregistrement mouvement stock: %v", err)
		}
	}
}
