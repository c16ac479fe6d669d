package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"

	"souq_back_end/internal/cart"
	"souq_back_end/internal/inventory"
	"souq_back_end/internal/models"
	"souq_back_end/internal/payment"
	"souq_back_end/internal/pricing"
)

// CartStore est la vue du pipeline sur le stockage des paniers.
// Claim retire le panier de façon atomique : sur deux checkouts concurrents,
// un seul réussit, l'autre voit ErrCartNotFound.
type CartStore interface {
	GetByID(ctx context.Context, cartID string) (*models.Cart, error)
	Claim(ctx context.Context, cartID string) (*models.Cart, error)
	Restore(ctx context.Context, c *models.Cart) error
}

type OrderStore interface {
	Insert(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id gocql.UUID) (*models.Order, error)
	Delete(ctx context.Context, id gocql.UUID) error
	SetPaid(ctx context.Context, id gocql.UUID, at time.Time) error
	SetDelivered(ctx context.Context, id gocql.UUID, at time.Time) error
}

// EventLog déduplique les événements webhook par identifiant :
// Claim renvoie faux si l'événement a déjà été traité.
type EventLog interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type UserDirectory interface {
	IDByEmail(ctx context.Context, email string) (string, error)
}

// Notifier envoie la confirmation de commande (implémentation e-mail dans utils).
type Notifier interface {
	OrderConfirmation(o *models.Order, email string)
}

// Config porte les surcharges de taxe et de livraison (zéro possible) et les
// paramètres de session de paiement.
type Config struct {
	TaxPrice      float64
	ShippingPrice float64
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// Service orchestre le pipeline de création de commande :
// panier → prix effectif → commande → inventaire → suppression du panier.
type Service struct {
	carts    CartStore
	orders   OrderStore
	stock    inventory.Applier
	events   EventLog
	users    UserDirectory
	provider payment.Provider
	notifier Notifier
	cfg      Config
}

func NewService(carts CartStore, orders OrderStore, stock inventory.Applier, events EventLog, users UserDirectory, provider payment.Provider, notifier Notifier, cfg Config) *Service {
	return &Service{
		carts:    carts,
		orders:   orders,
		stock:    stock,
		events:   events,
		users:    users,
		provider: provider,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Provider expose le prestataire de paiement (vérification de webhook).
func (s *Service) Provider() payment.Provider { return s.provider }

// CreateCashOrder crée une commande payable à la livraison depuis un panier.
// Le panier est réclamé atomiquement avant toute écriture ; chaque échec
// ultérieur déclenche la compensation (commande supprimée, panier restauré)
// pour ne jamais laisser d'effet partiel visible.
//
// Garantie au-plus-une-fois par panier : un crash entre l'insertion de la
// commande et la fin du pipeline peut perdre le panier réclamé, mais ne peut
// pas produire deux commandes pour le même panier.
func (s *Service) CreateCashOrder(ctx context.Context, userID, email, cartID string, addr models.ShippingAddress) (*models.Order, error) {
	c, err := s.carts.Claim(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		_ = s.carts.Restore(ctx, c)
		return nil, cart.ErrCartNotFound
	}
	if len(c.Items) == 0 {
		_ = s.carts.Restore(ctx, c)
		return nil, ErrEmptyCart
	}

	order := s.buildOrder(c, s.effectiveTotal(c), addr, models.PaymentMethodCash, nil)

	if err := s.orders.Insert(ctx, order); err != nil {
		// une insertion partielle ne doit jamais laisser de ligne orpheline
		_ = s.orders.Delete(ctx, order.ID)
		_ = s.carts.Restore(ctx, c)
		return nil, fmt.Errorf("création commande: %w", err)
	}

	if err := s.applyInventory(ctx, order); err != nil {
		// compensation : jamais de commande sans décrément de stock
		_ = s.orders.Delete(ctx, order.ID)
		_ = s.carts.Restore(ctx, c)
		return nil, err
	}

	s.notify(order, email)
	return order, nil
}

// CreateCheckoutSession traduit le prix effectif du panier en session de
// paiement chez le prestataire. Le panier n'est pas consommé ici : il le sera
// par le webhook de confirmation.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID, email, name, cartID string, addr models.ShippingAddress) (*payment.Session, error) {
	c, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, cart.ErrCartNotFound
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	total := s.effectiveTotal(c)
	return s.provider.CreateCheckoutSession(ctx, payment.SessionRequest{
		CartID:          c.ID,
		CustomerEmail:   email,
		CustomerName:    name,
		AmountMinor:     pricing.MinorUnits(total),
		Currency:        s.cfg.Currency,
		SuccessURL:      s.cfg.SuccessURL,
		CancelURL:       s.cfg.CancelURL,
		ShippingAddress: addr,
	})
}

// HandlePaymentEvent crée la commande carte à réception d'un événement de
// paiement confirmé. Idempotent par identifiant d'événement : les relivraisons
// du prestataire ne créent ni seconde commande ni second décrément de stock.
func (s *Service) HandlePaymentEvent(ctx context.Context, event *payment.Event) (*models.Order, error) {
	if event.Type != payment.EventCheckoutCompleted {
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
		return nil, nil
	}

	claimed, err := s.events.Claim(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		log.Printf("🔁 Événement %s déjà traité, on ignore.", event.ID)
		return nil, nil
	}

	userID, err := s.users.IDByEmail(ctx, event.CustomerEmail)
	if err != nil {
		_ = s.events.Release(ctx, event.ID)
		return nil, ErrUserNotFound
	}

	c, err := s.carts.Claim(ctx, event.CartID)
	if err != nil {
		_ = s.events.Release(ctx, event.ID)
		return nil, err
	}
	if c.UserID != userID {
		_ = s.carts.Restore(ctx, c)
		_ = s.events.Release(ctx, event.ID)
		return nil, cart.ErrCartNotFound
	}

	now := time.Now()
	total := pricing.Round2(float64(event.AmountMinor) / 100)
	order := s.buildOrder(c, total, event.ShippingAddress, models.PaymentMethodCard, &now)

	if err := s.orders.Insert(ctx, order); err != nil {
		_ = s.orders.Delete(ctx, order.ID)
		_ = s.carts.Restore(ctx, c)
		_ = s.events.Release(ctx, event.ID)
		return nil, fmt.Errorf("création commande: %w", err)
	}

	if err := s.applyInventory(ctx, order); err != nil {
		_ = s.orders.Delete(ctx, order.ID)
		_ = s.carts.Restore(ctx, c)
		_ = s.events.Release(ctx, event.ID)
		return nil, err
	}

	s.notify(order, event.CustomerEmail)
	return order, nil
}

// MarkPaid passe une commande à l'état payé. Re-marquer une commande déjà
// payée est un no-op, pas une erreur.
func (s *Service) MarkPaid(ctx context.Context, orderID gocql.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.IsPaid {
		return order, nil
	}

	now := time.Now()
	if err := s.orders.SetPaid(ctx, orderID, now); err != nil {
		return nil, err
	}
	order.IsPaid = true
	order.PaidAt = &now
	return order, nil
}

// MarkDelivered passe une commande à l'état livré, indépendamment du paiement.
func (s *Service) MarkDelivered(ctx context.Context, orderID gocql.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.IsDelivered {
		return order, nil
	}

	now := time.Now()
	if err := s.orders.SetDelivered(ctx, orderID, now); err != nil {
		return nil, err
	}
	order.IsDelivered = true
	order.DeliveredAt = &now
	return order, nil
}

// effectiveTotal : total après réduction si un coupon est appliqué, sinon
// total du panier, plus taxes et frais de port configurés.
func (s *Service) effectiveTotal(c *models.Cart) float64 {
	price := c.TotalPrice
	if c.TotalPriceAfterDiscount != nil {
		price = *c.TotalPriceAfterDiscount
	}
	return pricing.Round2(price + s.cfg.TaxPrice + s.cfg.ShippingPrice)
}

// buildOrder fige un instantané des articles du panier : les changements
// ultérieurs de panier ou d'inventaire ne modifient jamais la commande.
func (s *Service) buildOrder(c *models.Cart, total float64, addr models.ShippingAddress, method string, paidAt *time.Time) *models.Order {
	items := make([]models.OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Color:     item.Color,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	return &models.Order{
		ID:              gocql.TimeUUID(),
		UserID:          c.UserID,
		Items:           items,
		TotalOrderPrice: total,
		ShippingAddress: addr,
		PaymentMethod:   method,
		IsPaid:          paidAt != nil,
		PaidAt:          paidAt,
		CreatedAt:       time.Now(),
	}
}

func (s *Service) applyInventory(ctx context.Context, order *models.Order) error {
	adj, err := inventory.FromOrderItems(order.ID, order.UserID, order.Items)
	if err != nil {
		return err
	}
	return s.stock.Apply(ctx, adj)
}

func (s *Service) notify(order *models.Order, email string) {
	if s.notifier == nil || email == "" {
		return
	}
	go s.notifier.OrderConfirmation(order, email)
}
