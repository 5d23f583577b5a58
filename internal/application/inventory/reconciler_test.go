package inventory

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(t *testing.T) (*Reconciler, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewReconciler(store.Products(), store.LineItems()), store
}

func seedProduct(t *testing.T, store *memory.Store, name string, stock int, priceCents int64) *catalog.Product {
	t.Helper()
	product, err := catalog.New(name, stock, priceCents)
	require.NoError(t, err)
	require.NoError(t, store.Products().Save(context.Background(), product))
	return product
}

func stockOf(t *testing.T, store *memory.Store, id int64) int {
	t.Helper()
	product, err := store.Products().FindByID(context.Background(), id)
	require.NoError(t, err)
	return product.Stock
}

func TestReserve_DecrementsStockAndSnapshotsPrice(t *testing.T) {
	r, store := newTestReconciler(t)
	p := seedProduct(t, store, "keyboard", 10, 10000)

	items, err := r.Reserve(context.Background(), []ItemRequest{{ProductID: p.ID, Quantity: 5}})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].ProductID)
	assert.Equal(t, "keyboard", items[0].Name)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, int64(10000), items[0].PriceCents)
	assert.NotZero(t, items[0].ID)
	assert.Equal(t, 5, stockOf(t, store, p.ID))
}

func TestReserve_InsufficientStockLeavesWholeBatchUnapplied(t *testing.T) {
	r, store := newTestReconciler(t)
	first := seedProduct(t, store, "mouse", 10, 2000)
	second := seedProduct(t, store, "monitor", 3, 30000)

	_, err := r.Reserve(context.Background(), []ItemRequest{
		{ProductID: first.ID, Quantity: 5},
		{ProductID: second.ID, Quantity: 5},
	})

	require.ErrorIs(t, err, catalog.ErrInsufficientStock)
	assert.ErrorContains(t, err, "monitor")
	// The first item passed its check but nothing may be persisted.
	assert.Equal(t, 10, stockOf(t, store, first.ID))
	assert.Equal(t, 3, stockOf(t, store, second.ID))
}

func TestReserve_DuplicateProductSharesOneStockPool(t *testing.T) {
	// Two items naming the same product must draw from the same staged
	// stock: a pool of 5 cannot back two 5-unit reservations.
	r, store := newTestReconciler(t)
	p := seedProduct(t, store, "webcam", 5, 8000)

	_, err := r.Reserve(context.Background(), []ItemRequest{
		{ProductID: p.ID, Quantity: 5},
		{ProductID: p.ID, Quantity: 5},
	})

	require.ErrorIs(t, err, catalog.ErrInsufficientStock)
	assert.Equal(t, 5, stockOf(t, store, p.ID))
}

func TestReserve_DuplicateProductWithinStockSucceeds(t *testing.T) {
	r, store := newTestReconciler(t)
	p := seedProduct(t, store, "headset", 10, 6000)

	items, err := r.Reserve(context.Background(), []ItemRequest{
		{ProductID: p.ID, Quantity: 6},
		{ProductID: p.ID, Quantity: 4},
	})

	require.NoError(t, err)
	require.Len(t, items, 2)
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, 0, stockOf(t, store, p.ID), "both reservations come out of the one pool")
}

func TestReserve_UnknownProduct(t *testing.T) {
	r, _ := newTestReconciler(t)

	_, err := r.Reserve(context.Background(), []ItemRequest{{ProductID: 42, Quantity: 1}})

	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestReserve_RejectsNonPositiveQuantity(t *testing.T) {
	r, store := newTestReconciler(t)
	p := seedProduct(t, store, "cable", 10, 500)

	for _, quantity := range []int{0, -3} {
		_, err := r.Reserve(context.Background(), []ItemRequest{{ProductID: p.ID, Quantity: quantity}})
		require.ErrorIs(t, err, order.ErrInvalidQuantity)
	}
	assert.Equal(t, 10, stockOf(t, store, p.ID))
}

func TestReserve_RejectsEmptyBatch(t *testing.T) {
	r, _ := newTestReconciler(t)

	_, err := r.Reserve(context.Background(), nil)

	require.ErrorIs(t, err, order.ErrNoItems)
}

func TestReconcile_QuantityAboveOneAppliesDelta(t *testing.T) {
	r, store := newTestReconciler(t)
	p := seedProduct(t, store, "desk", 10, 4000)
	existing := []order.LineItem{{ID: 1, ProductID: p.ID, Name: "desk", Quantity: 10, PriceCents: 2500}}

	items, err := r.Reconcile(context.Background(), existing, []ItemRequest{{ProductID: p.ID, Quantity: 5}})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, int64(4000), items[0].PriceCents, "snapshot must take the current price")
	// 10 were reserved, 5 requested: the 5-unit delta flows back.
	assert.Equal(t, 15, stockOf(t, store, p.ID))
}

func TestReconcile_QuantityOfOneReservesFullAmount(t *testing.T) {
	// Requests of quantity <= 1 skip the delta computation and take the
	// full amount out of stock even when the order already holds units
	// of the product. Historical behavior, kept on purpose.
	r, store := newTestReconciler(t)
	p := seedProduct(t, store, "lamp", 10, 1500)
	existing := []order.LineItem{{ID: 1, ProductID: p.ID, Name: "lamp", Quantity: 3, PriceCents: 1500}}

	items, err := r.Reconcile(context.Background(), existing, []ItemRequest{{ProductID: p.ID, Quantity: 1}})

	require.NoError(t, err)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 9, stockOf(t, store, p.ID))
}

func TestReconcile_ValidatesFullQuantityNotJustDelta(t *testing.T) {
	r, store := newTestReconciler(t)
	p := seedProduct(t, store, "chair", 2, 9000)
	existing := []order.LineItem{{ID: 1, ProductID: p.ID, Name: "chair", Quantity: 5, PriceCents: 9000}}

	// Delta would be zero, but the full requested quantity exceeds the
	// current stock, so the update is rejected.
	_, err := r.Reconcile(context.Background(), existing, []ItemRequest{{ProductID: p.ID, Quantity: 5}})

	require.ErrorIs(t, err, catalog.ErrInsufficientStock)
	assert.Equal(t, 2, stockOf(t, store, p.ID))
}

func TestReconcile_DoesNotRollBackEarlierItems(t *testing.T) {
	// Unlike Reserve, the update path applies item by item: a failure on
	// a later item leaves earlier mutations in place.
	r, store := newTestReconciler(t)
	first := seedProduct(t, store, "pen", 10, 100)
	second := seedProduct(t, store, "ink", 1, 700)

	_, err := r.Reconcile(context.Background(), nil, []ItemRequest{
		{ProductID: first.ID, Quantity: 4},
		{ProductID: second.ID, Quantity: 3},
	})

	require.ErrorIs(t, err, catalog.ErrInsufficientStock)
	assert.Equal(t, 6, stockOf(t, store, first.ID))
	assert.Equal(t, 1, stockOf(t, store, second.ID))
}

func TestReconcile_DuplicateProductSeesEarlierTake(t *testing.T) {
	// The second occurrence of a product in one batch must check against
	// the stock the first occurrence already took, not a fresh read.
	r, store := newTestReconciler(t)
	p := seedProduct(t, store, "tripod", 5, 12000)

	_, err := r.Reconcile(context.Background(), nil, []ItemRequest{
		{ProductID: p.ID, Quantity: 3},
		{ProductID: p.ID, Quantity: 3},
	})

	require.ErrorIs(t, err, catalog.ErrInsufficientStock)
	// Item-by-item persistence, so the first take stays applied.
	assert.Equal(t, 2, stockOf(t, store, p.ID))
}

func TestRelease_RestoresReservedQuantities(t *testing.T) {
	r, store := newTestReconciler(t)
	p := seedProduct(t, store, "paper", 5, 300)

	err := r.Release(context.Background(), []order.LineItem{
		{ProductID: p.ID, Name: "paper", Quantity: 5, PriceCents: 300},
	})

	require.NoError(t, err)
	assert.Equal(t, 10, stockOf(t, store, p.ID))
}

func TestRelease_MissingProductIsFatal(t *testing.T) {
	r, _ := newTestReconciler(t)

	err := r.Release(context.Background(), []order.LineItem{
		{ProductID: 99, Name: "ghost", Quantity: 2, PriceCents: 100},
	})

	require.ErrorIs(t, err, catalog.ErrNotFound)
}
