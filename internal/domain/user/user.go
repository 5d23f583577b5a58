package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("user: not found")
	ErrInvalidName         = errors.New("user: name is required")
	ErrInvalidBalance      = errors.New("user: balance must be zero or greater")
	ErrInsufficientBalance = errors.New("user: insufficient balance")
)

// User carries the account balance orders are paid from. The balance can
// never go below zero.
type User struct {
	ID           int64
	Name         string
	BalanceCents int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func New(name string, balanceCents int64) (*User, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if balanceCents < 0 {
		return nil, ErrInvalidBalance
	}

	now := time.Now().UTC()
	return &User{
		Name:         name,
		BalanceCents: balanceCents,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Debit removes amount from the balance, failing when the balance would
// go negative.
func (u *User) Debit(amountCents int64) error {
	if amountCents < 0 {
		return ErrInvalidBalance
	}
	if u.BalanceCents < amountCents {
		return ErrInsufficientBalance
	}
	u.BalanceCents -= amountCents
	u.touch()
	return nil
}

// Credit adds amount to the balance.
func (u *User) Credit(amountCents int64) error {
	if amountCents < 0 {
		return ErrInvalidBalance
	}
	u.BalanceCents += amountCents
	u.touch()
	return nil
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
