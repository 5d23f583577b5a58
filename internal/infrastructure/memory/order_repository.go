package memory

import (
	"context"
	"sort"

	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/order"
)

type orderRepository struct {
	store *Store
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *orderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	return r.findWhere(ctx, func(*order.Order) bool { return true })
}

func (r *orderRepository) FindUnpaid(ctx context.Context) ([]*order.Order, error) {
	return r.findWhere(ctx, func(o *order.Order) bool { return o.Status == order.StatusNotPaid })
}

func (r *orderRepository) FindByUserID(ctx context.Context, userID int64) ([]*order.Order, error) {
	return r.findWhere(ctx, func(o *order.Order) bool { return o.UserID == userID })
}

// Save assigns IDs on first insert and bumps the optimistic version on
// every write. A save carrying a stale version fails with ErrConflict.
// Owned line items are cascaded into the line-item table.
func (r *orderRepository) Save(ctx context.Context, o *order.Order) error {
	_ = ctx
	if o == nil {
		return order.ErrNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if o.ID == 0 {
		r.store.orderSeq++
		o.ID = r.store.orderSeq
	} else if existing, ok := r.store.orders[o.ID]; ok {
		if existing.Version != o.Version {
			return order.ErrConflict
		}
	}
	o.Version++

	for i := range o.Items {
		item := &o.Items[i]
		if item.ID == 0 {
			r.store.lineItemSeq++
			item.ID = r.store.lineItemSeq
		}
		item.OrderID = o.ID
		clone := *item
		r.store.lineItems[item.ID] = &clone
	}
	r.dropOrphanedItemsLocked(o)

	r.store.orders[o.ID] = o.Clone()
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	_ = ctx

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[id]; !ok {
		return order.ErrNotFound
	}
	delete(r.store.orders, id)
	for itemID, item := range r.store.lineItems {
		if item.OrderID == id {
			delete(r.store.lineItems, itemID)
		}
	}
	return nil
}

func (r *orderRepository) findWhere(ctx context.Context, keep func(*order.Order) bool) ([]*order.Order, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*order.Order
	for _, o := range r.store.orders {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// dropOrphanedItemsLocked removes line items that used to belong to the
// order but are absent from its current item set (orphan removal on
// update).
func (r *orderRepository) dropOrphanedItemsLocked(o *order.Order) {
	kept := make(map[int64]bool, len(o.Items))
	for _, item := range o.Items {
		kept[item.ID] = true
	}
	for itemID, item := range r.store.lineItems {
		if item.OrderID == o.ID && !kept[itemID] {
			delete(r.store.lineItems, itemID)
		}
	}
}

type lineItemRepository struct {
	store *Store
}

func (r *lineItemRepository) Save(ctx context.Context, item order.LineItem) (order.LineItem, error) {
	_ = ctx

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.saveLocked(item), nil
}

func (r *lineItemRepository) SaveAll(ctx context.Context, items []order.LineItem) ([]order.LineItem, error) {
	_ = ctx

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]order.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, r.saveLocked(item))
	}
	return out, nil
}

func (r *lineItemRepository) saveLocked(item order.LineItem) order.LineItem {
	if item.ID == 0 {
		r.store.lineItemSeq++
		item.ID = r.store.lineItemSeq
	}
	clone := item
	r.store.lineItems[item.ID] = &clone
	return item
}
