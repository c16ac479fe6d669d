package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souq_back_end/internal/models"
)

func TestCalcCartTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []models.CartItem
		want  float64
	}{
		{
			name:  "empty cart",
			items: nil,
			want:  0,
		},
		{
			name: "single item",
			items: []models.CartItem{
				{Price: 19.99, Quantity: 1},
			},
			want: 19.99,
		},
		{
			name: "multiple items and quantities",
			items: []models.CartItem{
				{Price: 10, Quantity: 2},
				{Price: 5, Quantity: 1},
			},
			want: 25,
		},
		{
			name: "float rounding stays at 2 decimals",
			items: []models.CartItem{
				{Price: 0.1, Quantity: 3},
			},
			want: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalcCartTotal(tt.items))
		})
	}
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name    string
		total   float64
		percent float64
		want    float64
		wantErr error
	}{
		{name: "20 percent off 25", total: 25, percent: 20, want: 20},
		{name: "zero percent keeps total", total: 42.50, percent: 0, want: 42.50},
		{name: "full discount", total: 99.99, percent: 100, want: 0},
		{name: "rounds to 2 decimals", total: 10.05, percent: 33, want: 6.73},
		{name: "negative percent rejected", total: 10, percent: -1, wantErr: ErrInvalidDiscount},
		{name: "percent above 100 rejected", total: 10, percent: 101, wantErr: ErrInvalidDiscount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyDiscount(tt.total, tt.percent)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.56, Round2(10.555))
	assert.Equal(t, 0.0, Round2(0))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2000), MinorUnits(20))
	assert.Equal(t, int64(1999), MinorUnits(19.99))
	// 19.90 n'est pas représentable exactement en float64 : la conversion
	// décimale doit quand même donner 1990, pas 1989.
	assert.Equal(t, int64(1990), MinorUnits(19.90))
	assert.Equal(t, int64(0), MinorUnits(0))
}
