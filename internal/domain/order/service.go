package order

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/rafaelmp/pedidos/internal/domain/coupon"
)

// MoneyFormatter renders a monetary amount for human-facing output.
type MoneyFormatter interface {
	Format(d decimal.Decimal) string
}

// Service orchestrates the order lifecycle on top of a Repository and
// enforces the status state machine. Each operation is a single-record
// transaction: read, check, mutate, write.
type Service struct {
	orders Repository
	money  MoneyFormatter
}

// NewService creates an order Service with the required dependencies.
func NewService(orders Repository, money MoneyFormatter) *Service {
	return &Service{
		orders: orders,
		money:  money,
	}
}

// CreateOrderRequest holds the input for creating an order. OrderDate is
// the raw wire value and must match DateLayout.
type CreateOrderRequest struct {
	CustomerName string
	Total        decimal.Decimal
	OrderDate    string
}

// Create validates the request and persists a new order in status NEW.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, &ValidationError{Field: "customerName", Reason: "must not be blank"}
	}
	if !req.Total.IsPositive() {
		return nil, &ValidationError{Field: "total", Reason: "must be positive"}
	}
	date, err := time.Parse(DateLayout, req.OrderDate)
	if err != nil {
		return nil, &ValidationError{Field: "orderDate", Reason: "must be a valid dd-MM-yyyy date, got " + strconv.Quote(req.OrderDate)}
	}

	o := &Order{
		CustomerName: name,
		Total:        req.Total.Round(2),
		OrderDate:    date,
		Status:       StatusNew,
	}
	saved, err := s.orders.Save(ctx, o)
	if err != nil {
		return nil, errors.Wrap(err, "save order")
	}
	return saved, nil
}

// ApplyCoupon recomputes the order total from the coupon token and
// persists it. The new total is total-discount clamped at zero and rounded
// to cents. Applications are cumulative: each one runs against the current
// total. The order status is left untouched.
func (s *Service) ApplyCoupon(ctx context.Context, id int64, code string) (decimal.Decimal, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}

	discount, err := coupon.Compute(o.Total, code)
	if err != nil {
		return decimal.Zero, err
	}

	total := o.Total.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.Total = total.Round(2)

	if _, err := s.orders.Save(ctx, o); err != nil {
		return decimal.Zero, errors.Wrap(err, "save order")
	}
	return o.Total, nil
}

// Pay moves an order from NEW to PAID. Any other starting status yields an
// InvalidStateError.
func (s *Service) Pay(ctx context.Context, id int64) (*Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(StatusPaid) {
		return nil, &InvalidStateError{ID: o.ID, Status: o.Status}
	}

	o.Status = StatusPaid
	saved, err := s.orders.Save(ctx, o)
	if err != nil {
		return nil, errors.Wrap(err, "save order")
	}
	return saved, nil
}

// FulfillResult holds the fulfilled order and its presentation receipt.
type FulfillResult struct {
	Order   *Order
	Receipt string
}

// Fulfill transitions an order to FULFILLED. A zero (or fully discounted)
// total skips the payment requirement and fulfills from any status; a
// positive total requires the order to be PAID first.
func (s *Service) Fulfill(ctx context.Context, id int64) (*FulfillResult, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case o.Total.Sign() <= 0:
		// Free order: nothing to collect.
		o.Status = StatusFulfilled
	case o.Status == StatusPaid:
		o.Status = StatusFulfilled
	default:
		return nil, &InvalidStateError{ID: o.ID, Status: o.Status}
	}

	saved, err := s.orders.Save(ctx, o)
	if err != nil {
		return nil, errors.Wrap(err, "save order")
	}

	return &FulfillResult{
		Order:   saved,
		Receipt: s.money.Format(saved.Total) + " | " + saved.Status.Description(),
	}, nil
}

// Get returns the order for id, or (nil, nil) when it does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "find order")
	}
	return o, nil
}

// List returns a snapshot of all orders in id order.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	all, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return all, nil
}

// find loads the order for id, mapping absence to NotFoundError.
func (s *Service) find(ctx context.Context, id int64) (*Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "find order")
	}
	if o == nil {
		return nil, &NotFoundError{ID: id}
	}
	return o, nil
}
