package order

import (
	"time"

	"github.com/google/uuid"
)

// Domain events emitted by the order lifecycle. Other components (audit,
// metrics) subscribe to them on the in-process bus.

type CreatedEvent struct {
	EventID    string
	OrderID    int64
	UserID     int64
	SumCents   int64
	OccurredAt time.Time
}

func (CreatedEvent) EventName() string { return "order.created" }

func NewCreatedEvent(o *Order) CreatedEvent {
	return CreatedEvent{
		EventID:    uuid.NewString(),
		OrderID:    o.ID,
		UserID:     o.UserID,
		SumCents:   o.SumCents,
		OccurredAt: time.Now().UTC(),
	}
}

type UpdatedEvent struct {
	EventID    string
	OrderID    int64
	SumCents   int64
	OccurredAt time.Time
}

func (UpdatedEvent) EventName() string { return "order.updated" }

func NewUpdatedEvent(o *Order) UpdatedEvent {
	return UpdatedEvent{
		EventID:    uuid.NewString(),
		OrderID:    o.ID,
		SumCents:   o.SumCents,
		OccurredAt: time.Now().UTC(),
	}
}

type PaidEvent struct {
	EventID    string
	OrderID    int64
	UserID     int64
	SumCents   int64
	OccurredAt time.Time
}

func (PaidEvent) EventName() string { return "order.paid" }

func NewPaidEvent(o *Order) PaidEvent {
	return PaidEvent{
		EventID:    uuid.NewString(),
		OrderID:    o.ID,
		UserID:     o.UserID,
		SumCents:   o.SumCents,
		OccurredAt: time.Now().UTC(),
	}
}

type DeletedEvent struct {
	EventID    string
	OrderID    int64
	OccurredAt time.Time
}

func (DeletedEvent) EventName() string { return "order.deleted" }

func NewDeletedEvent(id int64) DeletedEvent {
	return DeletedEvent{
		EventID:    uuid.NewString(),
		OrderID:    id,
		OccurredAt: time.Now().UTC(),
	}
}

// ExpiredEvent is emitted by the expiry worker after it has released the
// order's reserved stock and removed the order.
type ExpiredEvent struct {
	EventID    string
	OrderID    int64
	UserID     int64
	OccurredAt time.Time
}

func (ExpiredEvent) EventName() string { return "order.expired" }

func NewExpiredEvent(o *Order) ExpiredEvent {
	return ExpiredEvent{
		EventID:    uuid.NewString(),
		OrderID:    o.ID,
		UserID:     o.UserID,
		OccurredAt: time.Now().UTC(),
	}
}
