package utils

import (
	"fmt"
	"log"

	"souq_back_end/internal/models"
)

// SendOrderStatusEmail envoie un email de notification de changement de statut
func SendOrderStatusEmail(order *models.Order, userEmail string, newStatus string) error {
	subject := getStatusEmailSubject(newStatus)
	html := generateStatusEmailHTML(order, newStatus)

	if err := SendConfirmationEmail(userEmail, subject, html); err != nil {
		log.Printf("❌ Erreur envoi email statut: %v", err)
		return err
	}

	log.Printf("📧 Email de statut envoyé: %s → %s", newStatus, userEmail)
	return nil
}

func getStatusEmailSubject(status string) string {
	switch status {
	case "paid":
		return "✅ Paiement confirmé - Souq"
	case "delivered":
		return "🎉 Votre commande a été livrée - Souq"
	case "cancelled":
		return "❌ Commande annulée - Souq"
	default:
		return "📋 Mise à jour de votre commande - Souq"
	}
}

func getStatusMessage(status string) string {
	switch status {
	case "paid":
		return "Nous avons bien reçu votre paiement. Votre commande est en cours de préparation."
	case "delivered":
		return "Votre commande a été livrée. Merci pour votre confiance !"
	case "cancelled":
		return "Votre commande a été annulée. Si vous n'êtes pas à l'origine de cette annulation, contactez-nous."
	default:
		return "Le statut de votre commande a changé."
	}
}

func getStatusColor(status string) string {
	switch status {
	case "paid":
		return "#28a745"
	case "delivered":
		return "#17a2b8"
	case "cancelled":
		return "#dc3545"
	default:
		return "#6c757d"
	}
}

func generateStatusEmailHTML(order *models.Order, status string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Mise à jour de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 30px; border-radius: 10px;">
		<h2 style="color: #333;">Mise à jour de votre commande</h2>
		<div style="display: inline-block; padding: 10px 20px; background-color: %s; color: white; border-radius: 20px; font-weight: bold;">
			%s
		</div>
		<p style="margin-top: 20px; color: #333;">%s</p>
		<table style="width: 100%%; background-color: #f8f9fa; border-radius: 8px; margin: 20px 0;">
			<tr>
				<td style="padding: 10px; color: #666;">Numéro de commande:</td>
				<td style="padding: 10px; text-align: right;">#%s</td>
			</tr>
			<tr>
				<td style="padding: 10px; color: #666;">Montant total:</td>
				<td style="padding: 10px; text-align: right; font-weight: bold;">%.2f€</td>
			</tr>
		</table>
		<p style="color: #555;">
			Cordialement,<br>
			<strong>L'équipe Souq</strong>
		</p>
	</div>
</body>
</html>`, getStatusColor(status), getStatusEmailSubject(status), getStatusMessage(status),
		order.ID.String(), order.TotalOrderPrice)
}
