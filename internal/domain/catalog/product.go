package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("catalog: product not found")
	ErrInvalidName       = errors.New("catalog: name is required")
	ErrInvalidPrice      = errors.New("catalog: price must be zero or greater")
	ErrInvalidQuantity   = errors.New("catalog: quantity must be greater than zero")
	ErrInvalidStock      = errors.New("catalog: stock must be zero or greater")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)

// Product is a catalog entry. Stock is mutated only through Reserve and
// Release so it can never go negative.
type Product struct {
	ID         int64
	Name       string
	Stock      int
	PriceCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func New(name string, stock int, priceCents int64) (*Product, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	if priceCents < 0 {
		return nil, ErrInvalidPrice
	}

	now := time.Now().UTC()
	return &Product{
		Name:       name,
		Stock:      stock,
		PriceCents: priceCents,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Reserve takes quantity units out of stock for an order line item.
func (p *Product) Reserve(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.Stock {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	p.touch()
	return nil
}

// Release returns quantity units to stock, undoing a reservation.
func (p *Product) Release(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.Stock += quantity
	p.touch()
	return nil
}

// Restock adds admin-supplied stock on top of the current amount.
func (p *Product) Restock(quantity int) error {
	if quantity < 0 {
		return ErrInvalidStock
	}
	p.Stock += quantity
	p.touch()
	return nil
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
