package memory

import (
	"context"
	"sync"

	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/user"
)

// Store is the shared in-memory database behind the per-entity
// repositories. One store backs all of them so a unit of work can touch
// products, orders, line items and users under a single boundary.
//
// IDs are assigned on first save, JPA-identity style: a zero ID means
// "not persisted yet".
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	products  map[int64]*catalog.Product
	orders    map[int64]*order.Order
	lineItems map[int64]*order.LineItem
	users     map[int64]*user.User

	productSeq  int64
	orderSeq    int64
	lineItemSeq int64
	userSeq     int64
}

func NewStore() *Store {
	return &Store{
		products:  make(map[int64]*catalog.Product),
		orders:    make(map[int64]*order.Order),
		lineItems: make(map[int64]*order.LineItem),
		users:     make(map[int64]*user.User),
	}
}

// Within serializes units of work against each other. Individual
// repository calls stay safe on their own via the store mutex; Within
// adds the cross-call boundary create/update/pay/reap need.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (s *Store) Products() catalog.Repository {
	return &productRepository{store: s}
}

func (s *Store) Orders() order.Repository {
	return &orderRepository{store: s}
}

func (s *Store) LineItems() order.LineItemRepository {
	return &lineItemRepository{store: s}
}

func (s *Store) Users() user.Repository {
	return &userRepository{store: s}
}
