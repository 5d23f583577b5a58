package order

import "context"

type Repository interface {
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindAll(ctx context.Context) ([]*Order, error)
	// FindUnpaid returns every order still in StatusNotPaid.
	FindUnpaid(ctx context.Context) ([]*Order, error)
	FindByUserID(ctx context.Context, userID int64) ([]*Order, error)
	// Save inserts a new order or updates an existing one. Updates carry
	// an optimistic version check and fail with ErrConflict when the
	// stored version has moved on.
	Save(ctx context.Context, order *Order) error
	// Delete removes the order together with its owned line items.
	Delete(ctx context.Context, id int64) error
}

// LineItemRepository persists product snapshots. Items are written at
// reservation time, before they are attached to their order.
type LineItemRepository interface {
	Save(ctx context.Context, item LineItem) (LineItem, error)
	SaveAll(ctx context.Context, items []LineItem) ([]LineItem, error)
}
