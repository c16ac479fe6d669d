package checkout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gocql/gocql"

	"souq_back_end/internal/database"
	"souq_back_end/internal/models"
)

// ScyllaOrderStore persiste les commandes dans le keyspace orders.
// Les articles sont figés en JSON dans la ligne ; la table orders_by_user
// dénormalise l'accès par utilisateur (même schéma que users_by_email).
type ScyllaOrderStore struct{}

func NewScyllaOrderStore() *ScyllaOrderStore { return &ScyllaOrderStore{} }

func (s *ScyllaOrderStore) Insert(ctx context.Context, o *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	// Les deux tables vivent dans le même keyspace : un batch logged garantit
	// qu'aucune des deux lignes n'apparaît sans l'autre.
	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO orders (id, user_id, items, total_order_price,
			  address_details, address_phone, address_city, address_postal_code,
			  payment_method, is_paid, paid_at, is_delivered, delivered_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, string(itemsJSON), o.TotalOrderPrice,
		o.ShippingAddress.Details, o.ShippingAddress.Phone,
		o.ShippingAddress.City, o.ShippingAddress.PostalCode,
		o.PaymentMethod, o.IsPaid, o.PaidAt, o.IsDelivered, o.DeliveredAt, o.CreatedAt)
	batch.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id) VALUES (?, ?, ?)`,
		o.UserID, o.CreatedAt, o.ID)

	return session.ExecuteBatch(batch)
}

func (s *ScyllaOrderStore) GetByID(ctx context.Context, id gocql.UUID) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var (
		o         models.Order
		itemsJSON string
	)
	query := `SELECT id, user_id, items, total_order_price,
			  address_details, address_phone, address_city, address_postal_code,
			  payment_method, is_paid, paid_at, is_delivered, delivered_at, created_at
			  FROM orders WHERE id = ?`
	if err := session.Query(query, id).WithContext(ctx).Scan(
		&o.ID, &o.UserID, &itemsJSON, &o.TotalOrderPrice,
		&o.ShippingAddress.Details, &o.ShippingAddress.Phone,
		&o.ShippingAddress.City, &o.ShippingAddress.PostalCode,
		&o.PaymentMethod, &o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt, &o.CreatedAt,
	); err != nil {
		return nil, ErrOrderNotFound
	}

	if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser retourne les commandes d'un utilisateur, plus récentes d'abord.
func (s *ScyllaOrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT order_id FROM orders_by_user WHERE user_id = ?`, userID).
		WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := s.GetByID(ctx, id)
		if err != nil {
			continue // commande compensée entre les deux lectures
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (s *ScyllaOrderStore) Delete(ctx context.Context, id gocql.UUID) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	o, err := s.GetByID(ctx, id)
	if err == nil {
		_ = session.Query(`DELETE FROM orders_by_user WHERE user_id = ? AND created_at = ? AND order_id = ?`,
			o.UserID, o.CreatedAt, o.ID).WithContext(ctx).Exec()
	}
	return session.Query(`DELETE FROM orders WHERE id = ?`, id).WithContext(ctx).Exec()
}

func (s *ScyllaOrderStore) SetPaid(ctx context.Context, id gocql.UUID, at time.Time) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	return session.Query(`UPDATE orders SET is_paid = true, paid_at = ? WHERE id = ?`, at, id).
		WithContext(ctx).Exec()
}

func (s *ScyllaOrderStore) SetDelivered(ctx context.Context, id gocql.UUID, at time.Time) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	return session.Query(`UPDATE orders SET is_delivered = true, delivered_at = ? WHERE id = ?`, at, id).
		WithContext(ctx).Exec()
}

// ScyllaEventLog déduplique les événements webhook par INSERT conditionnel
// (LWT) : un seul appelant obtient le claim pour un identifiant donné.
type ScyllaEventLog struct{}

func NewScyllaEventLog() *ScyllaEventLog { return &ScyllaEventLog{} }

func (l *ScyllaEventLog) Claim(ctx context.Context, eventID string) (bool, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, err
	}

	applied, err := session.Query(
		`INSERT INTO processed_events (event_id, processed_at) VALUES (?, ?) IF NOT EXISTS`,
		eventID, time.Now(),
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// Release libère un claim pour qu'une relivraison du prestataire puisse
// retenter après un échec du pipeline.
func (l *ScyllaEventLog) Release(ctx context.Context, eventID string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	return session.Query(`DELETE FROM processed_events WHERE event_id = ?`, eventID).
		WithContext(ctx).Exec()
}

// ScyllaUserDirectory résout un utilisateur par e-mail via users_by_email.
type ScyllaUserDirectory struct{}

func NewScyllaUserDirectory() *ScyllaUserDirectory { return &ScyllaUserDirectory{} }

func (d *ScyllaUserDirectory) IDByEmail(ctx context.Context, email string) (string, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return "", err
	}

	var userID string
	if err := session.Query(`SELECT user_id FROM users_by_email WHERE email = ?`, email).
		WithContext(ctx).Scan(&userID); err != nil {
		return "", ErrUserNotFound
	}
	return userID, nil
}
