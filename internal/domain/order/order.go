package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrConflict        = errors.New("order: version conflict")
	ErrNoItems         = errors.New("order: at least one item is required")
	ErrNotEditable     = errors.New("order: only unpaid orders can be modified")
	ErrAlreadyPaid     = errors.New("order: already paid")
	ErrInvalidQuantity = errors.New("order: quantity must be greater than zero")
)

type Status string

const (
	StatusNotPaid Status = "NOT_PAID"
	StatusPaid    Status = "PAID"
)

// LineItem is a snapshot of a product at reservation time. It belongs to
// exactly one order and does not follow later catalog edits.
type LineItem struct {
	ID         int64
	OrderID    int64
	ProductID  int64
	Name       string
	Quantity   int
	PriceCents int64
}

func (li LineItem) SubtotalCents() int64 {
	return int64(li.Quantity) * li.PriceCents
}

// Order is the aggregate root: it owns its line items and keeps SumCents
// equal to the sum of their subtotals. Status moves NOT_PAID -> PAID and
// never back; a paid order keeps its items and reserved stock.
type Order struct {
	ID        int64
	UserID    int64
	Items     []LineItem
	SumCents  int64
	Status    Status
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(userID int64, items []LineItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	now := time.Now().UTC()
	o := &Order{
		UserID:    userID,
		Items:     items,
		Status:    StatusNotPaid,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.recalculateSum()
	return o, nil
}

// ReplaceItems swaps the owned line items for a freshly reserved set and
// recomputes the sum from the new snapshots.
func (o *Order) ReplaceItems(items []LineItem) error {
	if !o.Editable() {
		return ErrNotEditable
	}
	if len(items) == 0 {
		return ErrNoItems
	}
	o.Items = items
	o.recalculateSum()
	o.touch()
	return nil
}

func (o *Order) MarkPaid() error {
	if o.Status == StatusPaid {
		return ErrAlreadyPaid
	}
	o.Status = StatusPaid
	o.touch()
	return nil
}

func (o *Order) Editable() bool {
	return o.Status == StatusNotPaid
}

// Age reports how long the order has been open relative to now.
func (o *Order) Age(now time.Time) time.Duration {
	return now.Sub(o.CreatedAt)
}

func (o *Order) recalculateSum() {
	var sum int64
	for _, item := range o.Items {
		sum += item.SubtotalCents()
	}
	o.SumCents = sum
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	return &clone
}
