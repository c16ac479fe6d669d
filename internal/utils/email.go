package utils

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"souq_back_end/internal/models"

	"github.com/skip2/go-qrcode"
	"github.com/wneessen/go-mail"
)

// MailNotifier envoie les confirmations de commande par e-mail.
// Les échecs sont journalisés, jamais remontés au client.
type MailNotifier struct{}

func (MailNotifier) OrderConfirmation(o *models.Order, email string) {
	html, err := GenerateOrderConfirmationHTML(o)
	if err != nil {
		log.Println("⚠️ Génération e-mail de confirmation échouée:", err)
		return
	}
	if err := SendConfirmationEmail(email, "Confirmation de votre commande", html); err != nil {
		log.Println("⚠️ Envoi e-mail de confirmation échoué:", err)
	}
}

func SendConfirmationEmail(to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@souq.example"
	}
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// GenerateOrderQR encode l'URL de suivi de commande en PNG base64.
func GenerateOrderQR(orderID string) (string, error) {
	baseURL := os.Getenv("FRONTEND_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	png, err := qrcode.Encode(fmt.Sprintf("%s/orders/%s", baseURL, orderID), qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande
func GenerateOrderConfirmationHTML(order *models.Order) (string, error) {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>%.2f€</td>
				<td>%.2f€</td>
			</tr>`, item.Name, item.Quantity, item.Price, item.Price*float64(item.Quantity))
	}

	qrBase64, err := GenerateOrderQR(order.ID.String())
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande</h2>
		<p>Bonjour,</p>
		<p>Votre commande a été confirmée avec succès.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">%.2f€</td>
				</tr>
			</tfoot>
		</table>

		<p>Présentez ce QR code lors de la livraison pour suivre votre commande:</p>
		<img src="data:image/png;base64,%s" alt="QR de suivi" width="128" height="128"/>

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Souq</strong>
		</p>
	</div>
</body>
</html>`, itemsHTML, order.TotalOrderPrice, qrBase64), nil
}
