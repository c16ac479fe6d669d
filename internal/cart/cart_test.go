package cart

import (
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souq_back_end/internal/models"
	"souq_back_end/internal/pricing"
)

func newProduct(t *testing.T, price float64) *models.Product {
	t.Helper()
	id, err := gocql.RandomUUID()
	require.NoError(t, err)
	return &models.Product{ID: id, Name: "clavier", Price: price, Stock: 10}
}

func TestAddItemMergesSameProductAndColor(t *testing.T) {
	c := New("user-1")
	p := newProduct(t, 10)

	AddItem(c, p, "noir")
	AddItem(c, p, "noir")

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 20.0, c.TotalPrice)
}

func TestAddItemDifferentColorIsSeparateLine(t *testing.T) {
	c := New("user-1")
	p := newProduct(t, 10)

	AddItem(c, p, "noir")
	AddItem(c, p, "blanc")

	require.Len(t, c.Items, 2)
	assert.Equal(t, 20.0, c.TotalPrice)
}

func TestAddItemSnapshotsPriceAtAddTime(t *testing.T) {
	c := New("user-1")
	p := newProduct(t, 10)

	AddItem(c, p, "")
	p.Price = 99 // changement de prix catalogue après l'ajout
	AddItem(c, p, "")

	require.Len(t, c.Items, 1)
	assert.Equal(t, 10.0, c.Items[0].Price)
	assert.Equal(t, 20.0, c.TotalPrice)
}

func TestTotalPriceInvariantAfterEveryMutation(t *testing.T) {
	c := New("user-1")
	AddItem(c, newProduct(t, 10), "")
	AddItem(c, newProduct(t, 5), "")

	check := func() {
		assert.Equal(t, pricing.CalcCartTotal(c.Items), c.TotalPrice)
	}
	check()

	require.NoError(t, SetItemQuantity(c, c.Items[0].ID, 3))
	check()

	require.NoError(t, RemoveItem(c, c.Items[1].ID))
	check()

	Clear(c)
	check()
	assert.Equal(t, 0.0, c.TotalPrice)
}

func TestSetItemQuantityValidation(t *testing.T) {
	c := New("user-1")
	AddItem(c, newProduct(t, 10), "")

	assert.ErrorIs(t, SetItemQuantity(c, c.Items[0].ID, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, SetItemQuantity(c, c.Items[0].ID, -2), ErrInvalidQuantity)
	assert.ErrorIs(t, SetItemQuantity(c, "absent", 2), ErrItemNotFound)
}

func TestRemoveItemNotFound(t *testing.T) {
	c := New("user-1")
	assert.ErrorIs(t, RemoveItem(c, "absent"), ErrItemNotFound)
}

func TestApplyCoupon(t *testing.T) {
	now := time.Now()

	c := New("user-1")
	AddItem(c, newProduct(t, 10), "")
	require.NoError(t, SetItemQuantity(c, c.Items[0].ID, 2))
	AddItem(c, newProduct(t, 5), "")
	require.Equal(t, 25.0, c.TotalPrice)

	coupon := &models.Coupon{Name: "PROMO20", Discount: 20, Expire: now.Add(time.Hour)}
	require.NoError(t, ApplyCoupon(c, coupon, now))
	require.NotNil(t, c.TotalPriceAfterDiscount)
	assert.Equal(t, 20.0, *c.TotalPriceAfterDiscount)
}

func TestApplyCouponExpired(t *testing.T) {
	now := time.Now()

	c := New("user-1")
	AddItem(c, newProduct(t, 10), "")

	coupon := &models.Coupon{Name: "VIEUX", Discount: 20, Expire: now.Add(-time.Minute)}
	err := ApplyCoupon(c, coupon, now)
	assert.ErrorIs(t, err, ErrCouponExpired)
	assert.Nil(t, c.TotalPriceAfterDiscount)
}

func TestMutationClearsAppliedDiscount(t *testing.T) {
	now := time.Now()

	c := New("user-1")
	p := newProduct(t, 10)
	AddItem(c, p, "")

	coupon := &models.Coupon{Name: "PROMO20", Discount: 20, Expire: now.Add(time.Hour)}
	require.NoError(t, ApplyCoupon(c, coupon, now))
	require.NotNil(t, c.TotalPriceAfterDiscount)

	// tout changement d'articles invalide la réduction
	AddItem(c, p, "")
	assert.Nil(t, c.TotalPriceAfterDiscount)

	require.NoError(t, ApplyCoupon(c, coupon, now))
	require.NoError(t, SetItemQuantity(c, c.Items[0].ID, 5))
	assert.Nil(t, c.TotalPriceAfterDiscount)
}
