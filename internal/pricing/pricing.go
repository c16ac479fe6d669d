package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"souq_back_end/internal/models"
)

// ErrInvalidDiscount est renvoyée pour un pourcentage hors de [0,100].
var ErrInvalidDiscount = errors.New("pourcentage de réduction invalide (attendu entre 0 et 100)")

var hundred = decimal.NewFromInt(100)

// CalcCartTotal calcule le montant total d'un panier : Σ(prix unitaire × quantité),
// arrondi à 2 décimales. Un panier vide vaut 0.
func CalcCartTotal(items []models.CartItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	f, _ := total.Round(2).Float64()
	return f
}

// ApplyDiscount applique une réduction en pourcentage sur un total et
// arrondit le résultat à 2 décimales.
func ApplyDiscount(total, percent float64) (float64, error) {
	if percent < 0 || percent > 100 {
		return 0, ErrInvalidDiscount
	}

	t := decimal.NewFromFloat(total)
	discount := t.Mul(decimal.NewFromFloat(percent)).Div(hundred)
	f, _ := t.Sub(discount).Round(2).Float64()
	return f, nil
}

// Round2 arrondit un montant à 2 décimales (taxes et frais de port).
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// MinorUnits convertit un montant en centimes pour le prestataire de paiement.
func MinorUnits(v float64) int64 {
	return decimal.NewFromFloat(v).Mul(hundred).Round(0).IntPart()
}
