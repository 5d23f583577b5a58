package catalog

import (
	"context"
	"testing"
	"time"

	domain "github.com/Zhima-Mochi/minishop-orders/app/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewService(store.Products(), store), store
}

func TestCreate_NewProduct(t *testing.T) {
	svc, _ := newService(t)

	p, err := svc.Create(context.Background(), CreateProductInput{Name: "keyboard", Stock: 10, PriceCents: 10000})

	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "keyboard", p.Name)
	assert.Equal(t, 10, p.Stock)
}

func TestCreate_DuplicateNameMergesStock(t *testing.T) {
	svc, _ := newService(t)

	first, err := svc.Create(context.Background(), CreateProductInput{Name: "Keyboard", Stock: 10, PriceCents: 10000})
	require.NoError(t, err)

	// Same name in a different case merges into the existing entry
	// instead of creating a second product.
	second, err := svc.Create(context.Background(), CreateProductInput{Name: "keyboard", Stock: 5, PriceCents: 12000})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 15, second.Stock)
	assert.Equal(t, int64(10000), second.PriceCents, "merge keeps the original price")

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), CreateProductInput{Name: "", Stock: 1, PriceCents: 100})
	require.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(context.Background(), CreateProductInput{Name: "x", Stock: -1, PriceCents: 100})
	require.ErrorIs(t, err, domain.ErrInvalidStock)

	_, err = svc.Create(context.Background(), CreateProductInput{Name: "x", Stock: 1, PriceCents: -100})
	require.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestUpdate_ChangesNameAndPriceOnly(t *testing.T) {
	svc, store := newService(t)
	p, err := svc.Create(context.Background(), CreateProductInput{Name: "mouse", Stock: 7, PriceCents: 2000})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), p.ID, UpdateProductInput{Name: "gaming mouse", PriceCents: 3500})

	require.NoError(t, err)
	assert.Equal(t, "gaming mouse", updated.Name)
	assert.Equal(t, int64(3500), updated.PriceCents)

	reloaded, err := store.Products().FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.Stock)
}

func TestUpdate_UnknownProduct(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Update(context.Background(), 42, UpdateProductInput{Name: "x", PriceCents: 100})

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_RemovesProduct(t *testing.T) {
	svc, _ := newService(t)
	p, err := svc.Create(context.Background(), CreateProductInput{Name: "desk", Stock: 2, PriceCents: 40000})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p.ID))

	_, err = svc.Get(context.Background(), p.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_UnknownProduct(t *testing.T) {
	svc, _ := newService(t)

	err := svc.Delete(context.Background(), 9)

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_MergeWaitsForOpenUnitOfWork(t *testing.T) {
	// The stock merge is a read-modify-write; it must queue behind any
	// open unit of work so it cannot overwrite a concurrent reservation.
	svc, store := newService(t)
	_, err := svc.Create(context.Background(), CreateProductInput{Name: "keyboard", Stock: 10, PriceCents: 10000})
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = store.Within(context.Background(), func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	merged := make(chan struct{})
	go func() {
		_, mergeErr := svc.Create(context.Background(), CreateProductInput{Name: "keyboard", Stock: 5, PriceCents: 10000})
		assert.NoError(t, mergeErr)
		close(merged)
	}()

	select {
	case <-merged:
		t.Fatal("merge ran while another unit of work was open")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-merged

	p, err := store.Products().FindByName(context.Background(), "keyboard")
	require.NoError(t, err)
	assert.Equal(t, 15, p.Stock)
}
