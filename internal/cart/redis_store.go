package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"souq_back_end/internal/models"
)

const (
	cartTTL    = 30 * 24 * time.Hour
	maxRetries = 5
)

// RedisStore stocke les paniers en JSON dans Redis : un panier par utilisateur
// sous cart:<user_id>, plus une clé inverse cartref:<cart_id> pour le checkout.
// Les mutations passent par une transaction WATCH (contrôle optimiste).
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func cartKey(userID string) string { return "cart:" + userID }
func refKey(cartID string) string  { return "cartref:" + cartID }

// GetByUser retourne le panier d'un utilisateur.
func (s *RedisStore) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeCart([]byte(data))
}

// GetByID retourne un panier par identifiant via la clé inverse.
func (s *RedisStore) GetByID(ctx context.Context, cartID string) (*models.Cart, error) {
	userID, err := s.client.Get(ctx, refKey(cartID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	c, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.ID != cartID {
		// la clé inverse pointait sur un panier recréé depuis
		return nil, ErrCartNotFound
	}
	return c, nil
}

// Update lit, mute et réécrit le panier d'un utilisateur dans une transaction
// WATCH. Si create est vrai, un panier vide est créé au premier ajout.
// Une mutation concurrente invalide la transaction, qui est rejouée ;
// après maxRetries échecs, ErrCartConflict est renvoyée.
func (s *RedisStore) Update(ctx context.Context, userID string, create bool, mutate func(*models.Cart) error) (*models.Cart, error) {
	var result *models.Cart

	txf := func(tx *redis.Tx) error {
		var c *models.Cart

		data, err := tx.Get(ctx, cartKey(userID)).Result()
		switch {
		case errors.Is(err, redis.Nil):
			if !create {
				return ErrCartNotFound
			}
			c = New(userID)
		case err != nil:
			return err
		default:
			if c, err = decodeCart([]byte(data)); err != nil {
				return err
			}
		}

		if err := mutate(c); err != nil {
			return err
		}

		c.Version++
		c.UpdatedAt = time.Now()

		raw, err := json.Marshal(c)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cartKey(userID), raw, cartTTL)
			pipe.Set(ctx, refKey(c.ID), userID, cartTTL)
			return nil
		})
		if err == nil {
			result = c
		}
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, txf, cartKey(userID))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, ErrCartConflict
}

// Claim retire atomiquement un panier en vue d'un checkout (GETDEL) :
// sur deux checkouts concurrents du même panier, un seul obtient la valeur,
// l'autre voit ErrCartNotFound.
func (s *RedisStore) Claim(ctx context.Context, cartID string) (*models.Cart, error) {
	userID, err := s.client.Get(ctx, refKey(cartID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	data, err := s.client.GetDel(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	c, err := decodeCart([]byte(data))
	if err != nil {
		return nil, err
	}
	if c.ID != cartID {
		// panier recréé entre temps : on le remet en place
		_ = s.Restore(ctx, c)
		return nil, ErrCartNotFound
	}

	s.client.Del(ctx, refKey(cartID))
	return c, nil
}

// Restore réécrit un panier réclamé, utilisé en compensation quand la
// création de commande échoue après le Claim.
func (s *RedisStore) Restore(ctx context.Context, c *models.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, cartKey(c.UserID), raw, cartTTL)
		pipe.Set(ctx, refKey(c.ID), c.UserID, cartTTL)
		return nil
	})
	return err
}

// DeleteByUser supprime le panier d'un utilisateur et sa clé inverse.
func (s *RedisStore) DeleteByUser(ctx context.Context, userID string) error {
	c, err := s.GetByUser(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cartKey(userID))
		pipe.Del(ctx, refKey(c.ID))
		return nil
	})
	return err
}

func decodeCart(raw []byte) (*models.Cart, error) {
	var c models.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
