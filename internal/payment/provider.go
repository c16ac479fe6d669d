package payment

import (
	"context"
	"errors"

	"souq_back_end/internal/models"
)

// ErrInvalidSignature : signature de webhook invérifiable. Aucun état ne doit
// être modifié quand cette erreur est renvoyée.
var ErrInvalidSignature = errors.New("signature de webhook invalide")

// EventCheckoutCompleted est le seul type d'événement traité par le pipeline.
const EventCheckoutCompleted = "checkout.session.completed"

// SessionRequest décrit une session de paiement à créer chez le prestataire :
// une seule ligne construite depuis le total effectif de la commande.
type SessionRequest struct {
	CartID          string
	CustomerEmail   string
	CustomerName    string
	AmountMinor     int64 // centimes
	Currency        string
	SuccessURL      string
	CancelURL       string
	ShippingAddress models.ShippingAddress
}

// Session est la référence opaque renvoyée au client pour redirection.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event est un événement webhook vérifié et décodé.
type Event struct {
	ID              string
	Type            string
	CartID          string
	CustomerEmail   string
	AmountMinor     int64
	ShippingAddress models.ShippingAddress
}

// Provider est l'interface étroite vers le prestataire de paiement, injectée
// dans le pipeline de commande pour rester testable avec un faux.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}
