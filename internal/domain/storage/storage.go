package storage

import "context"

// Atomic runs fn as one indivisible unit of work against the stores.
// Units are serialized with each other, so a reservation and the order
// save it backs either both land or neither does, and two units can
// never interleave on the same product or order.
type Atomic interface {
	Within(ctx context.Context, fn func(ctx context.Context) error) error
}
