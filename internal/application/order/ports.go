package order

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/app/internal/application/inventory"
	domain "github.com/Zhima-Mochi/minishop-orders/app/internal/domain/order"
)

// Inventory is the reconciler port: reserve on create, delta-reconcile
// on update, release on expiry.
type Inventory interface {
	Reserve(ctx context.Context, requests []inventory.ItemRequest) ([]domain.LineItem, error)
	Reconcile(ctx context.Context, existing []domain.LineItem, requests []inventory.ItemRequest) ([]domain.LineItem, error)
	Release(ctx context.Context, items []domain.LineItem) error
}
