package inventory

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/pkg/logging"
	"go.uber.org/zap"
)

// ItemRequest is one (product, quantity) pair of a desired order.
type ItemRequest struct {
	ProductID int64
	Quantity  int
}

// Reconciler moves stock between the catalog and order line items. It is
// the only component that decrements or restores product stock.
type Reconciler struct {
	products  catalog.Repository
	lineItems order.LineItemRepository
}

func NewReconciler(products catalog.Repository, lineItems order.LineItemRepository) *Reconciler {
	return &Reconciler{
		products:  products,
		lineItems: lineItems,
	}
}

// Reserve backs a new order: it validates and decrements stock for every
// requested item and returns the persisted price/name snapshots. The
// batch is all-or-nothing; nothing is written until every item has
// passed its sufficiency check. A product named more than once in the
// batch is staged once, so each later occurrence checks against the
// stock the earlier ones already took.
func (r *Reconciler) Reserve(ctx context.Context, requests []ItemRequest) ([]order.LineItem, error) {
	if len(requests) == 0 {
		return nil, order.ErrNoItems
	}

	byID := make(map[int64]*catalog.Product, len(requests))
	staged := make([]*catalog.Product, 0, len(requests))
	snapshots := make([]order.LineItem, 0, len(requests))

	for _, req := range requests {
		product, ok := byID[req.ProductID]
		if !ok {
			var err error
			product, err = r.products.FindByID(ctx, req.ProductID)
			if err != nil {
				return nil, fmt.Errorf("product %d: %w", req.ProductID, err)
			}
			byID[req.ProductID] = product
			staged = append(staged, product)
		}
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("product %d: %w", req.ProductID, order.ErrInvalidQuantity)
		}
		if err := product.Reserve(req.Quantity); err != nil {
			return nil, fmt.Errorf("%w for item %q", catalog.ErrInsufficientStock, product.Name)
		}

		snapshots = append(snapshots, order.LineItem{
			ProductID:  product.ID,
			Name:       product.Name,
			Quantity:   req.Quantity,
			PriceCents: product.PriceCents,
		})
	}

	snapshots, err := r.lineItems.SaveAll(ctx, snapshots)
	if err != nil {
		return nil, fmt.Errorf("save line items: %w", err)
	}
	if err := r.products.SaveAll(ctx, staged); err != nil {
		return nil, fmt.Errorf("save products: %w", err)
	}

	logging.FromContext(ctx).Info("stock_reserved",
		zap.Int("items", len(snapshots)),
	)
	return snapshots, nil
}

// Reconcile adjusts stock for an update of an unpaid order. For every
// requested item the full quantity must fit the current stock; the
// actual mutation is the delta against what the order already holds,
// except that quantities of one (or less) are taken in full rather than
// as a delta. That quirk mirrors long-standing behavior and is kept
// deliberately; see the tests.
//
// Unlike Reserve this path persists item by item: an insufficiency on a
// later item does not undo mutations already applied for earlier ones.
func (r *Reconciler) Reconcile(ctx context.Context, existing []order.LineItem, requests []ItemRequest) ([]order.LineItem, error) {
	if len(requests) == 0 {
		return nil, order.ErrNoItems
	}

	updated := make([]order.LineItem, 0, len(requests))
	byID := make(map[int64]*catalog.Product, len(requests))

	for _, req := range requests {
		product, ok := byID[req.ProductID]
		if !ok {
			var err error
			product, err = r.products.FindByID(ctx, req.ProductID)
			if err != nil {
				return nil, fmt.Errorf("product %d: %w", req.ProductID, err)
			}
			byID[req.ProductID] = product
		}
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("product %d: %w", req.ProductID, order.ErrInvalidQuantity)
		}
		if product.Stock < req.Quantity {
			return nil, fmt.Errorf("%w for item %q", catalog.ErrInsufficientStock, product.Name)
		}

		prev := findByProduct(existing, product.ID)

		delta := req.Quantity
		if req.Quantity > 1 {
			delta = req.Quantity - prev.Quantity
		}
		switch {
		case delta > 0:
			if err := product.Reserve(delta); err != nil {
				return nil, fmt.Errorf("%w for item %q", catalog.ErrInsufficientStock, product.Name)
			}
		case delta < 0:
			if err := product.Release(-delta); err != nil {
				return nil, fmt.Errorf("release product %d: %w", product.ID, err)
			}
		}

		if err := r.products.Save(ctx, product); err != nil {
			return nil, fmt.Errorf("save product %d: %w", product.ID, err)
		}

		item := prev
		item.ProductID = product.ID
		item.Name = product.Name
		item.Quantity = req.Quantity
		item.PriceCents = product.PriceCents
		saved, err := r.lineItems.Save(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("save line item: %w", err)
		}
		updated = append(updated, saved)
	}

	return updated, nil
}

// Release restores the reserved quantity of every line item back to its
// product. A missing product is an error, not a skip: losing track of
// reserved stock is worse than failing loudly.
func (r *Reconciler) Release(ctx context.Context, items []order.LineItem) error {
	for _, item := range items {
		product, err := r.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return fmt.Errorf("product %d: %w", item.ProductID, err)
		}
		if err := product.Release(item.Quantity); err != nil {
			return fmt.Errorf("release product %d: %w", product.ID, err)
		}
		if err := r.products.Save(ctx, product); err != nil {
			return fmt.Errorf("save product %d: %w", product.ID, err)
		}
	}

	logging.FromContext(ctx).Info("stock_released",
		zap.Int("items", len(items)),
	)
	return nil
}

func findByProduct(items []order.LineItem, productID int64) order.LineItem {
	for _, item := range items {
		if item.ProductID == productID {
			return item
		}
	}
	return order.LineItem{}
}
