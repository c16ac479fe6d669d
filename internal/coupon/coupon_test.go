package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"souq_back_end/internal/models"
)

func TestValid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expire  time.Time
		wantErr bool
	}{
		{name: "future expiry ok", expire: now.Add(time.Hour), wantErr: false},
		{name: "already expired", expire: now.Add(-time.Second), wantErr: true},
		{name: "expiring exactly now is expired", expire: now, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.Coupon{Name: "PROMO", Discount: 10, Expire: tt.expire}
			err := Valid(c, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCouponInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
