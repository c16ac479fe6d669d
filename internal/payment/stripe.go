package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/webhook"
)

// StripeProvider implémente Provider avec Stripe Checkout.
// La clé API globale est initialisée dans main (stripe.Key).
type StripeProvider struct {
	webhookSecret string
}

func NewStripeProvider(webhookSecret string) *StripeProvider {
	return &StripeProvider{webhookSecret: webhookSecret}
}

// CreateCheckoutSession crée une session Stripe avec une seule ligne au
// montant total effectif, le panier en client_reference_id et l'adresse de
// livraison dans les métadonnées.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		CustomerEmail:     stripe.String(req.CustomerEmail),
		ClientReferenceID: stripe.String(req.CartID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.AmountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Commande de " + req.CustomerName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("address_details", req.ShippingAddress.Details)
	params.AddMetadata("address_phone", req.ShippingAddress.Phone)
	params.AddMetadata("address_city", req.ShippingAddress.City)
	params.AddMetadata("address_postal_code", req.ShippingAddress.PostalCode)

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("erreur création session Stripe: %w", err)
	}

	return &Session{ID: s.ID, URL: s.URL}, nil
}

// VerifyWebhook vérifie la signature Stripe puis décode l'événement.
// Échec de signature = rejet sans aucune mutation d'état.
func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("décodage checkout session: %w", err)
	}

	out.CartID = cs.ClientReferenceID
	out.AmountMinor = cs.AmountTotal
	out.CustomerEmail = cs.CustomerEmail
	if out.CustomerEmail == "" && cs.CustomerDetails != nil {
		out.CustomerEmail = cs.CustomerDetails.Email
	}
	out.ShippingAddress.Details = cs.Metadata["address_details"]
	out.ShippingAddress.Phone = cs.Metadata["address_phone"]
	out.ShippingAddress.City = cs.Metadata["address_city"]
	out.ShippingAddress.PostalCode = cs.Metadata["address_postal_code"]

	return out, nil
}
