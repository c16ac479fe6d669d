package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souq_back_end/internal/cart"
	"souq_back_end/internal/inventory"
	"souq_back_end/internal/models"
	"souq_back_end/internal/payment"
)

type fakeCartStore struct {
	mu    sync.Mutex
	carts map[string]*models.Cart // par cart ID
}

func newFakeCartStore(carts ...*models.Cart) *fakeCartStore {
	s := &fakeCartStore{carts: make(map[string]*models.Cart)}
	for _, c := range carts {
		s.carts[c.ID] = c
	}
	return s
}

func (s *fakeCartStore) GetByID(_ context.Context, cartID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartID]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	return c, nil
}

func (s *fakeCartStore) Claim(_ context.Context, cartID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartID]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	delete(s.carts, cartID)
	return c, nil
}

func (s *fakeCartStore) Restore(_ context.Context, c *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.ID] = c
	return nil
}

func (s *fakeCartStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

type fakeOrderStore struct {
	mu        sync.Mutex
	orders    map[gocql.UUID]*models.Order
	insertErr error
	// partialInsert écrit la ligne puis renvoie insertErr, comme un batch
	// qui aurait laissé une écriture derrière lui
	partialInsert bool
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[gocql.UUID]*models.Order)}
}

func (s *fakeOrderStore) Insert(_ context.Context, o *models.Order) error {
	if s.insertErr != nil && !s.partialInsert {
		return s.insertErr
	}
	s.mu.Lock()
	cp := *o
	s.orders[o.ID] = &cp
	s.mu.Unlock()
	return s.insertErr
}

func (s *fakeOrderStore) GetByID(_ context.Context, id gocql.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) Delete(_ context.Context, id gocql.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, id)
	return nil
}

func (s *fakeOrderStore) SetPaid(_ context.Context, id gocql.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.orders[id]
	o.IsPaid = true
	o.PaidAt = &at
	return nil
}

func (s *fakeOrderStore) SetDelivered(_ context.Context, id gocql.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.orders[id]
	o.IsDelivered = true
	o.DeliveredAt = &at
	return nil
}

func (s *fakeOrderStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type fakeApplier struct {
	mu      sync.Mutex
	applied []inventory.BulkAdjustment
	err     error
}

func (a *fakeApplier) Apply(_ context.Context, adj inventory.BulkAdjustment) error {
	if a.err != nil {
		return a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = append(a.applied, adj)
	return nil
}

func (a *fakeApplier) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.applied)
}

type fakeEventLog struct {
	mu      sync.Mutex
	claimed map[string]bool
}

func newFakeEventLog() *fakeEventLog {
	return &fakeEventLog{claimed: make(map[string]bool)}
}

func (l *fakeEventLog) Claim(_ context.Context, eventID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.claimed[eventID] {
		return false, nil
	}
	l.claimed[eventID] = true
	return true, nil
}

func (l *fakeEventLog) Release(_ context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.claimed, eventID)
	return nil
}

type fakeUserDirectory struct {
	byEmail map[string]string
}

func (d *fakeUserDirectory) IDByEmail(_ context.Context, email string) (string, error) {
	id, ok := d.byEmail[email]
	if !ok {
		return "", ErrUserNotFound
	}
	return id, nil
}

type fakeProvider struct {
	lastReq payment.SessionRequest
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	p.lastReq = req
	return &payment.Session{ID: "cs_test_123", URL: "https://checkout.example/cs_test_123"}, nil
}

func (p *fakeProvider) VerifyWebhook([]byte, string) (*payment.Event, error) {
	return nil, payment.ErrInvalidSignature
}

type fixture struct {
	svc      *Service
	carts    *fakeCartStore
	orders   *fakeOrderStore
	stock    *fakeApplier
	events   *fakeEventLog
	provider *fakeProvider
}

func newFixture(t *testing.T, cfg Config, carts ...*models.Cart) *fixture {
	t.Helper()
	f := &fixture{
		carts:    newFakeCartStore(carts...),
		orders:   newFakeOrderStore(),
		stock:    &fakeApplier{},
		events:   newFakeEventLog(),
		provider: &fakeProvider{},
	}
	users := &fakeUserDirectory{byEmail: map[string]string{"client@example.com": "user-1"}}
	f.svc = NewService(f.carts, f.orders, f.stock, f.events, users, f.provider, nil, cfg)
	return f
}

func testCart(t *testing.T, userID string) (*models.Cart, gocql.UUID, gocql.UUID) {
	t.Helper()
	p1, err := gocql.RandomUUID()
	require.NoError(t, err)
	p2, err := gocql.RandomUUID()
	require.NoError(t, err)

	c := cart.New(userID)
	cart.AddItem(c, &models.Product{ID: p1, Name: "clavier", Price: 10, Stock: 5}, "")
	require.NoError(t, cart.SetItemQuantity(c, c.Items[0].ID, 2))
	cart.AddItem(c, &models.Product{ID: p2, Name: "souris", Price: 5, Stock: 5}, "")
	require.Equal(t, 25.0, c.TotalPrice)
	return c, p1, p2
}

func TestCreateCashOrder(t *testing.T) {
	c, p1, p2 := testCart(t, "user-1")
	coupon := &models.Coupon{Name: "PROMO20", Discount: 20, Expire: time.Now().Add(time.Hour)}
	require.NoError(t, cart.ApplyCoupon(c, coupon, time.Now()))

	f := newFixture(t, Config{}, c)
	addr := models.ShippingAddress{Details: "12 rue des Oliviers", City: "Lyon"}

	order, err := f.svc.CreateCashOrder(context.Background(), "user-1", "client@example.com", c.ID, addr)
	require.NoError(t, err)

	assert.Equal(t, 20.0, order.TotalOrderPrice)
	assert.Equal(t, models.PaymentMethodCash, order.PaymentMethod)
	assert.False(t, order.IsPaid)
	assert.Equal(t, addr, order.ShippingAddress)
	require.Len(t, order.Items, 2)

	// le panier est consommé, l'inventaire ajusté exactement une fois
	assert.Equal(t, 0, f.carts.len())
	require.Equal(t, 1, f.stock.calls())

	deltas := f.stock.applied[0].Deltas
	require.Len(t, deltas, 2)
	assert.Equal(t, p1, deltas[0].ProductID)
	assert.Equal(t, -2, deltas[0].QuantityDelta)
	assert.Equal(t, 2, deltas[0].SoldDelta)
	assert.Equal(t, p2, deltas[1].ProductID)
	assert.Equal(t, -1, deltas[1].QuantityDelta)
}

func TestCreateCashOrderWithSurcharges(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	f := newFixture(t, Config{TaxPrice: 2.5, ShippingPrice: 4.99}, c)

	order, err := f.svc.CreateCashOrder(context.Background(), "user-1", "", c.ID, models.ShippingAddress{})
	require.NoError(t, err)
	assert.Equal(t, 32.49, order.TotalOrderPrice)
}

func TestCreateCashOrderCartNotFound(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.svc.CreateCashOrder(context.Background(), "user-1", "", "absent", models.ShippingAddress{})
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
}

func TestCreateCashOrderWrongOwner(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	f := newFixture(t, Config{}, c)

	_, err := f.svc.CreateCashOrder(context.Background(), "user-2", "", c.ID, models.ShippingAddress{})
	assert.ErrorIs(t, err, cart.ErrCartNotFound)

	// le panier du propriétaire légitime est restauré
	assert.Equal(t, 1, f.carts.len())
	assert.Equal(t, 0, f.orders.len())
}

func TestCreateCashOrderEmptyCart(t *testing.T) {
	c := cart.New("user-1")
	f := newFixture(t, Config{}, c)

	_, err := f.svc.CreateCashOrder(context.Background(), "user-1", "", c.ID, models.ShippingAddress{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 1, f.carts.len())
}

func TestCreateCashOrderCompensatesOnInventoryFailure(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	f := newFixture(t, Config{}, c)
	f.stock.err = inventory.ErrInsufficientStock

	_, err := f.svc.CreateCashOrder(context.Background(), "user-1", "", c.ID, models.ShippingAddress{})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// aucune commande orpheline, panier restauré
	assert.Equal(t, 0, f.orders.len())
	assert.Equal(t, 1, f.carts.len())
}

func TestCreateCashOrderCompensatesOnInsertFailure(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	f := newFixture(t, Config{}, c)
	f.orders.insertErr = errors.New("timeout scylla")

	_, err := f.svc.CreateCashOrder(context.Background(), "user-1", "", c.ID, models.ShippingAddress{})
	require.Error(t, err)

	assert.Equal(t, 1, f.carts.len())
	assert.Equal(t, 0, f.stock.calls())
}

func TestCreateCashOrderCleansUpPartialInsert(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	f := newFixture(t, Config{}, c)
	f.orders.insertErr = errors.New("timeout scylla")
	f.orders.partialInsert = true

	_, err := f.svc.CreateCashOrder(context.Background(), "user-1", "", c.ID, models.ShippingAddress{})
	require.Error(t, err)

	// la ligne écrite avant l'échec ne doit pas rester visible
	assert.Equal(t, 0, f.orders.len())
	assert.Equal(t, 1, f.carts.len())
	assert.Equal(t, 0, f.stock.calls())
}

func TestHandlePaymentEventCleansUpPartialInsert(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	f := newFixture(t, Config{}, c)
	f.orders.insertErr = errors.New("timeout scylla")
	f.orders.partialInsert = true

	event := paymentEvent(c)
	_, err := f.svc.HandlePaymentEvent(context.Background(), event)
	require.Error(t, err)

	assert.Equal(t, 0, f.orders.len())
	assert.Equal(t, 1, f.carts.len())

	// le claim relâché doit laisser passer une relivraison après correction
	f.orders.insertErr = nil
	f.orders.partialInsert = false
	order, err := f.svc.HandlePaymentEvent(context.Background(), event)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, 1, f.orders.len())
}

func TestConcurrentCheckoutSingleWinner(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	f := newFixture(t, Config{}, c)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateCashOrder(context.Background(), "user-1", "", c.ID, models.ShippingAddress{})
		}(i)
	}
	wg.Wait()

	var successes, notFound int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, cart.ErrCartNotFound):
			notFound++
		default:
			t.Fatalf("erreur inattendue: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, notFound)
	assert.Equal(t, 1, f.orders.len())
	assert.Equal(t, 1, f.stock.calls())
}

func paymentEvent(c *models.Cart) *payment.Event {
	return &payment.Event{
		ID:            "evt_1",
		Type:          payment.EventCheckoutCompleted,
		CartID:        c.ID,
		CustomerEmail: "client@example.com",
		AmountMinor:   2500,
		ShippingAddress: models.ShippingAddress{
			Details: "12 rue des Oliviers",
			City:    "Lyon",
		},
	}
}

func TestHandlePaymentEventCreatesPaidOrder(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	f := newFixture(t, Config{}, c)

	order, err := f.svc.HandlePaymentEvent(context.Background(), paymentEvent(c))
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, models.PaymentMethodCard, order.PaymentMethod)
	assert.True(t, order.IsPaid)
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, 25.0, order.TotalOrderPrice)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, 0, f.carts.len())
	assert.Equal(t, 1, f.stock.calls())
}

func TestHandlePaymentEventReplayIsNoOp(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	f := newFixture(t, Config{}, c)
	event := paymentEvent(c)

	first, err := f.svc.HandlePaymentEvent(context.Background(), event)
	require.NoError(t, err)
	require.NotNil(t, first)

	// relivraison du même event id : aucune seconde commande
	second, err := f.svc.HandlePaymentEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Equal(t, 1, f.orders.len())
	assert.Equal(t, 1, f.stock.calls())
}

func TestHandlePaymentEventIgnoresOtherTypes(t *testing.T) {
	f := newFixture(t, Config{})
	order, err := f.svc.HandlePaymentEvent(context.Background(), &payment.Event{ID: "evt_2", Type: "invoice.paid"})
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestHandlePaymentEventUnknownUserReleasesClaim(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	f := newFixture(t, Config{}, c)
	event := paymentEvent(c)
	event.CustomerEmail = "inconnu@example.com"

	_, err := f.svc.HandlePaymentEvent(context.Background(), event)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// le claim est libéré : une relivraison corrigée peut aboutir
	event.CustomerEmail = "client@example.com"
	order, err := f.svc.HandlePaymentEvent(context.Background(), event)
	require.NoError(t, err)
	assert.NotNil(t, order)
}

func TestCreateCheckoutSession(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	coupon := &models.Coupon{Name: "PROMO20", Discount: 20, Expire: time.Now().Add(time.Hour)}
	require.NoError(t, cart.ApplyCoupon(c, coupon, time.Now()))

	f := newFixture(t, Config{Currency: "eur", SuccessURL: "https://shop.example/orders", CancelURL: "https://shop.example/cart"}, c)

	sess, err := f.svc.CreateCheckoutSession(context.Background(), "user-1", "client@example.com", "Nadia", c.ID, models.ShippingAddress{City: "Lyon"})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", sess.ID)

	req := f.provider.lastReq
	assert.Equal(t, c.ID, req.CartID)
	assert.Equal(t, int64(2000), req.AmountMinor)
	assert.Equal(t, "eur", req.Currency)
	assert.Equal(t, "client@example.com", req.CustomerEmail)

	// la session n'a pas consommé le panier : c'est le webhook qui le fera
	assert.Equal(t, 1, f.carts.len())
}

func TestCreateCheckoutSessionEmptyCart(t *testing.T) {
	c := cart.New("user-1")
	f := newFixture(t, Config{}, c)

	_, err := f.svc.CreateCheckoutSession(context.Background(), "user-1", "", "", c.ID, models.ShippingAddress{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestMarkPaidIdempotent(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	f := newFixture(t, Config{}, c)

	order, err := f.svc.CreateCashOrder(context.Background(), "user-1", "", c.ID, models.ShippingAddress{})
	require.NoError(t, err)

	paid, err := f.svc.MarkPaid(context.Background(), order.ID)
	require.NoError(t, err)
	require.True(t, paid.IsPaid)
	firstPaidAt := *paid.PaidAt

	// re-marquer est un no-op qui conserve l'horodatage d'origine
	again, err := f.svc.MarkPaid(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, again.IsPaid)
	assert.Equal(t, firstPaidAt, *again.PaidAt)
}

func TestMarkDeliveredIdempotent(t *testing.T) {
	c, _, _ := testCart(t, "user-1")
	f := newFixture(t, Config{}, c)

	order, err := f.svc.CreateCashOrder(context.Background(), "user-1", "", c.ID, models.ShippingAddress{})
	require.NoError(t, err)

	delivered, err := f.svc.MarkDelivered(context.Background(), order.ID)
	require.NoError(t, err)
	require.True(t, delivered.IsDelivered)

	again, err := f.svc.MarkDelivered(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, *delivered.DeliveredAt, *again.DeliveredAt)
}

func TestMarkPaidOrderNotFound(t *testing.T) {
	f := newFixture(t, Config{})
	id, err := gocql.RandomUUID()
	require.NoError(t, err)

	_, err = f.svc.MarkPaid(context.Background(), id)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
