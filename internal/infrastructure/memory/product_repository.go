package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/catalog"
)

type productRepository struct {
	store *Store
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	product, ok := r.store.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return product.Clone(), nil
}

func (r *productRepository) FindByName(ctx context.Context, name string) (*catalog.Product, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, product := range r.store.products {
		if strings.EqualFold(strings.TrimSpace(product.Name), strings.TrimSpace(name)) {
			return product.Clone(), nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (r *productRepository) FindAll(ctx context.Context) ([]*catalog.Product, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*catalog.Product, 0, len(r.store.products))
	for _, product := range r.store.products {
		out = append(out, product.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *productRepository) Save(ctx context.Context, product *catalog.Product) error {
	_ = ctx
	if product == nil {
		return catalog.ErrNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.saveLocked(product)
}

func (r *productRepository) SaveAll(ctx context.Context, products []*catalog.Product) error {
	_ = ctx

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// Validate the whole batch before touching the maps so a bad entry
	// cannot leave a partial write behind.
	for _, product := range products {
		if product == nil {
			return catalog.ErrNotFound
		}
		if product.Stock < 0 {
			return catalog.ErrInvalidStock
		}
	}
	for _, product := range products {
		if err := r.saveLocked(product); err != nil {
			return err
		}
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	_ = ctx

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.store.products, id)
	return nil
}

func (r *productRepository) saveLocked(product *catalog.Product) error {
	if product.Stock < 0 {
		return catalog.ErrInvalidStock
	}
	if product.ID == 0 {
		r.store.productSeq++
		product.ID = r.store.productSeq
	}
	r.store.products[product.ID] = product.Clone()
	return nil
}
