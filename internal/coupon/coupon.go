package coupon

import (
	"context"
	"errors"
	"time"

	"souq_back_end/internal/database"
	"souq_back_end/internal/models"
)

// ErrCouponInvalid couvre les deux cas visibles du client : code inconnu
// ou coupon expiré. On ne distingue pas pour ne pas aider l'énumération.
var ErrCouponInvalid = errors.New("coupon invalide ou expiré")

// Valid vérifie qu'un coupon est utilisable à l'instant donné.
func Valid(c *models.Coupon, now time.Time) error {
	if !c.Expire.After(now) {
		return ErrCouponInvalid
	}
	return nil
}

// ScyllaStore résout un code coupon dans la table ks_orders.coupons.
type ScyllaStore struct{}

func NewScyllaStore() *ScyllaStore { return &ScyllaStore{} }

// FindValid recherche un coupon par code exact et évalue son expiration au
// moment de l'appel (jamais en cache, pour ne pas honorer un coupon périmé).
func (s *ScyllaStore) FindValid(ctx context.Context, name string) (*models.Coupon, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var c models.Coupon
	query := `SELECT id, name, discount, expire, created_by, created_at, updated_at
			  FROM coupons WHERE name = ? LIMIT 1`
	if err := session.Query(query, name).WithContext(ctx).Scan(
		&c.ID, &c.Name, &c.Discount, &c.Expire, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, ErrCouponInvalid
	}

	if err := Valid(&c, time.Now()); err != nil {
		return nil, err
	}
	return &c, nil
}
