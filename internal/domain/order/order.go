package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for order dates: day-month-year, as in
// "15-12-2024". Orders carry a calendar date only, no time of day.
const DateLayout = "02-01-2006"

// Order is a customer's purchase record.
type Order struct {
	ID           int64
	CustomerName string
	Total        decimal.Decimal
	OrderDate    time.Time
	Status       Status
}

// Repository defines persistence operations for orders.
//
// Save assigns the next sequence id when o.ID is zero and overwrites the
// existing record otherwise; id assignment and the write are atomic as a
// unit. FindByID returns (nil, nil) when no order exists for the id:
// absence is not an error at this layer. FindAll returns a snapshot in id
// order that is independent of later mutations.
type Repository interface {
	Save(ctx context.Context, o *Order) (*Order, error)
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindAll(ctx context.Context) ([]Order, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Clear(ctx context.Context) error
}
