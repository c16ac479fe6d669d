package pa

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"souq_back_end/internal/database"
	"souq_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	defaultOrdersPageSize = 100
	maxOrdersPageSize     = 500
)

// GetAllOrders - Lister les commandes page par page (Admin/Manager seulement)
// ?limit= borne la taille de page, ?page= reprend là où la page précédente s'est arrêtée
func GetAllOrders(c *gin.Context) {
	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	limit := parsePageSize(c.Query("limit"))
	pageState, err := decodePageToken(c.Query("page"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Jeton de page invalide"})
		return
	}

	iter := session.Query(`SELECT id, user_id, items, total_order_price,
		address_details, address_phone, address_city, address_postal_code,
		payment_method, is_paid, paid_at, is_delivered, delivered_at, created_at FROM orders`).
		PageSize(limit).PageState(pageState).Iter()

	orders := []models.Order{}
	for len(orders) < limit {
		var o models.Order
		var itemsJSON string
		if !iter.Scan(&o.ID, &o.UserID, &itemsJSON, &o.TotalOrderPrice,
			&o.ShippingAddress.Details, &o.ShippingAddress.Phone,
			&o.ShippingAddress.City, &o.ShippingAddress.PostalCode,
			&o.PaymentMethod, &o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt, &o.CreatedAt) {
			break
		}
		_ = json.Unmarshal([]byte(itemsJSON), &o.Items)
		orders = append(orders, o)
	}
	nextPage := iter.PageState()
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	resp := gin.H{"results": len(orders), "orders": orders}
	if len(nextPage) > 0 {
		resp["next_page"] = base64.URLEncoding.EncodeToString(nextPage)
	}
	c.JSON(http.StatusOK, resp)
}

func parsePageSize(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultOrdersPageSize
	}
	if n > maxOrdersPageSize {
		return maxOrdersPageSize
	}
	return n
}

func decodePageToken(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	return base64.URLEncoding.DecodeString(raw)
}
