package catalog

import "context"

type Repository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	// FindByName matches the product name case-insensitively.
	FindByName(ctx context.Context, name string) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	Save(ctx context.Context, product *Product) error
	// SaveAll persists the batch atomically: either every product is
	// written or none is.
	SaveAll(ctx context.Context, products []*Product) error
	Delete(ctx context.Context, id int64) error
}
