package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelmp/pedidos/internal/domain/coupon"
	"github.com/rafaelmp/pedidos/internal/money"
)

// --- Fake repository ---

type fakeRepo struct {
	seq     int64
	orders  map[int64]Order
	saveErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[int64]Order)}
}

func (f *fakeRepo) Save(_ context.Context, o *Order) (*Order, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	stored := *o
	if stored.ID == 0 {
		f.seq++
		stored.ID = f.seq
	}
	f.orders[stored.ID] = stored
	return &stored, nil
}

func (f *fakeRepo) FindByID(_ context.Context, id int64) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (f *fakeRepo) FindAll(_ context.Context) ([]Order, error) {
	all := make([]Order, 0, len(f.orders))
	for id := int64(1); id <= f.seq; id++ {
		if o, ok := f.orders[id]; ok {
			all = append(all, o)
		}
	}
	return all, nil
}

func (f *fakeRepo) ExistsByID(_ context.Context, id int64) (bool, error) {
	_, ok := f.orders[id]
	return ok, nil
}

func (f *fakeRepo) Clear(_ context.Context) error {
	f.orders = make(map[int64]Order)
	f.seq = 0
	return nil
}

// --- Helpers ---

func newTestService(repo Repository) *Service {
	return NewService(repo, money.BRL())
}

func createOrder(t *testing.T, svc *Service, name, total, date string) *Order {
	t.Helper()
	o, err := svc.Create(context.Background(), CreateOrderRequest{
		CustomerName: name,
		Total:        decimal.RequireFromString(total),
		OrderDate:    date,
	})
	require.NoError(t, err)
	return o
}

// --- Tests ---

func TestCreate(t *testing.T) {
	svc := newTestService(newFakeRepo())

	o := createOrder(t, svc, "Ana", "100.00", "15-12-2024")

	assert.Equal(t, int64(1), o.ID)
	assert.Equal(t, "Ana", o.CustomerName)
	assert.Equal(t, StatusNew, o.Status)
	assert.True(t, decimal.RequireFromString("100.00").Equal(o.Total))
	assert.Equal(t, "15-12-2024", o.OrderDate.Format(DateLayout))
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		customer  string
		total     string
		date      string
		wantField string
	}{
		{"blank name", "", "50", "01-01-2024", "customerName"},
		{"whitespace name", "   ", "50", "01-01-2024", "customerName"},
		{"zero total", "Ana", "0", "01-01-2024", "total"},
		{"negative total", "Ana", "-10", "01-01-2024", "total"},
		{"empty date", "Ana", "50", "", "orderDate"},
		{"wrong date layout", "Ana", "50", "2024-12-15", "orderDate"},
		{"impossible date", "Ana", "50", "31-02-2024", "orderDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeRepo())

			_, err := svc.Create(context.Background(), CreateOrderRequest{
				CustomerName: tt.customer,
				Total:        decimal.RequireFromString(tt.total),
				OrderDate:    tt.date,
			})

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestCreate_SaveError(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("store broken")
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateOrderRequest{
		CustomerName: "Ana",
		Total:        decimal.NewFromInt(10),
		OrderDate:    "01-01-2024",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save order")
}

func TestApplyCoupon_Percentage(t *testing.T) {
	svc := newTestService(newFakeRepo())
	o := createOrder(t, svc, "Ana", "100.00", "15-12-2024")

	total, err := svc.ApplyCoupon(context.Background(), o.ID, "OFF10")

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("90.00").Equal(total))

	stored, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("90.00").Equal(stored.Total))
	assert.Equal(t, StatusNew, stored.Status)
}

func TestApplyCoupon_FixedClampedAtZero(t *testing.T) {
	svc := newTestService(newFakeRepo())
	o := createOrder(t, svc, "Ana", "90.00", "15-12-2024")

	total, err := svc.ApplyCoupon(context.Background(), o.ID, "VALOR200")

	require.NoError(t, err)
	assert.True(t, total.IsZero(), "expected zero, got %s", total)
}

func TestApplyCoupon_Cumulative(t *testing.T) {
	svc := newTestService(newFakeRepo())
	o := createOrder(t, svc, "Ana", "100.00", "15-12-2024")

	_, err := svc.ApplyCoupon(context.Background(), o.ID, "OFF10")
	require.NoError(t, err)
	total, err := svc.ApplyCoupon(context.Background(), o.ID, "OFF10")
	require.NoError(t, err)

	// Second application runs against the already discounted total.
	assert.True(t, decimal.RequireFromString("81.00").Equal(total),
		"expected 81.00, got %s", total)
}

func TestApplyCoupon_Invalid(t *testing.T) {
	svc := newTestService(newFakeRepo())
	o := createOrder(t, svc, "Ana", "100.00", "15-12-2024")

	_, err := svc.ApplyCoupon(context.Background(), o.ID, "BOGUS")

	var icErr *coupon.InvalidCouponError
	require.ErrorAs(t, err, &icErr)
	assert.Equal(t, "BOGUS", icErr.Code)

	// The stored total is untouched on failure.
	stored, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100.00").Equal(stored.Total))
}

func TestApplyCoupon_NotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.ApplyCoupon(context.Background(), 999, "OFF10")

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, int64(999), nfErr.ID)
}

func TestPay(t *testing.T) {
	svc := newTestService(newFakeRepo())
	o := createOrder(t, svc, "Ana", "100.00", "15-12-2024")

	paid, err := svc.Pay(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)

	// Paying twice is an illegal transition.
	_, err = svc.Pay(context.Background(), o.ID)
	var seErr *InvalidStateError
	require.ErrorAs(t, err, &seErr)
	assert.Equal(t, StatusPaid, seErr.Status)
}

func TestFulfill_Paid(t *testing.T) {
	svc := newTestService(newFakeRepo())
	o := createOrder(t, svc, "Ana", "100.00", "15-12-2024")
	_, err := svc.Pay(context.Background(), o.ID)
	require.NoError(t, err)

	res, err := svc.Fulfill(context.Background(), o.ID)

	require.NoError(t, err)
	assert.Equal(t, StatusFulfilled, res.Order.Status)
	assert.Equal(t, "R$ 100,00 | Entregue", res.Receipt)
}

func TestFulfill_UnpaidPositiveTotal(t *testing.T) {
	svc := newTestService(newFakeRepo())
	o := createOrder(t, svc, "Ana", "100.00", "15-12-2024")

	_, err := svc.Fulfill(context.Background(), o.ID)

	var seErr *InvalidStateError
	require.ErrorAs(t, err, &seErr)
	assert.Equal(t, StatusNew, seErr.Status)

	stored, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, stored.Status)
}

func TestFulfill_ZeroTotalSkipsPayment(t *testing.T) {
	svc := newTestService(newFakeRepo())
	o := createOrder(t, svc, "Ana", "90.00", "15-12-2024")

	_, err := svc.ApplyCoupon(context.Background(), o.ID, "VALOR200")
	require.NoError(t, err)

	res, err := svc.Fulfill(context.Background(), o.ID)

	require.NoError(t, err)
	assert.Equal(t, StatusFulfilled, res.Order.Status)
	assert.Equal(t, "R$ 0,00 | Entregue", res.Receipt)
}

func TestFulfill_NotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Fulfill(context.Background(), 42)

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestGet_AbsentIsNotAnError(t *testing.T) {
	svc := newTestService(newFakeRepo())

	o, err := svc.Get(context.Background(), 7)

	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestList(t *testing.T) {
	svc := newTestService(newFakeRepo())
	createOrder(t, svc, "Ana", "100.00", "15-12-2024")
	createOrder(t, svc, "Bruno", "25.50", "16-12-2024")

	all, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(2), all[1].ID)
	assert.Equal(t, "Bruno", all[1].CustomerName)
}
