package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// TaxPrice : surcharge de taxe ajoutée au total effectif (zéro par défaut).
func TaxPrice() float64 {
	return envFloat("TAX_PRICE", 0)
}

// ShippingPrice : frais de port ajoutés au total effectif (zéro par défaut).
func ShippingPrice() float64 {
	return envFloat("SHIPPING_PRICE", 0)
}

func Currency() string {
	if c := os.Getenv("CHECKOUT_CURRENCY"); c != "" {
		return c
	}
	return "eur"
}

func BaseURL() string {
	if u := os.Getenv("BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("⚠️ Valeur invalide pour %s (%q), on garde %v", key, raw, fallback)
		return fallback
	}
	return v
}
