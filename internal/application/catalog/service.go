package catalog

import (
	"context"

	domain "github.com/Zhima-Mochi/minishop-orders/app/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/storage"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/pkg/logging"
	"go.uber.org/zap"
)

// Service covers the admin side of the catalog: creating, editing and
// listing products. Stock movements driven by orders live in the
// inventory reconciler, not here; mutations still run under the shared
// atomic boundary so an admin write cannot clobber a concurrent
// reservation.
type Service struct {
	products domain.Repository
	atomic   storage.Atomic
}

func NewService(products domain.Repository, atomic storage.Atomic) *Service {
	return &Service{products: products, atomic: atomic}
}

type CreateProductInput struct {
	Name       string
	Stock      int
	PriceCents int64
}

// Create adds a product. When a product with the same name already
// exists (case-insensitive), the new stock is merged into it instead of
// creating a duplicate entry.
func (s *Service) Create(ctx context.Context, input CreateProductInput) (product *domain.Product, err error) {
	err = s.atomic.Within(ctx, func(ctx context.Context) error {
		existing, err := s.products.FindByName(ctx, input.Name)
		if err == nil {
			if err := existing.Restock(input.Stock); err != nil {
				return err
			}
			if err := s.products.Save(ctx, existing); err != nil {
				return err
			}
			logging.FromContext(ctx).Info("product_stock_merged",
				zap.Int64("product_id", existing.ID),
				zap.Int("stock", existing.Stock),
			)
			product = existing
			return nil
		}

		product, err = domain.New(input.Name, input.Stock, input.PriceCents)
		if err != nil {
			return err
		}
		if err := s.products.Save(ctx, product); err != nil {
			return err
		}
		logging.FromContext(ctx).Info("product_created",
			zap.Int64("product_id", product.ID),
			zap.String("name", product.Name),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

type UpdateProductInput struct {
	Name       string
	PriceCents int64
}

// Update edits name and price of an existing product. Stock is not
// touched here; it belongs to reservations and Create's merge path.
func (s *Service) Update(ctx context.Context, id int64, input UpdateProductInput) (product *domain.Product, err error) {
	if input.Name == "" {
		return nil, domain.ErrInvalidName
	}
	if input.PriceCents < 0 {
		return nil, domain.ErrInvalidPrice
	}

	err = s.atomic.Within(ctx, func(ctx context.Context) error {
		product, err = s.products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		product.Name = input.Name
		product.PriceCents = input.PriceCents
		return s.products.Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.atomic.Within(ctx, func(ctx context.Context) error {
		if _, err := s.products.FindByID(ctx, id); err != nil {
			return err
		}
		return s.products.Delete(ctx, id)
	})
}

func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	return s.products.FindAll(ctx)
}
