package order

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/app/internal/application/inventory"
	domain "github.com/Zhima-Mochi/minishop-orders/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/storage"
	domuser "github.com/Zhima-Mochi/minishop-orders/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/pkg/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName     = "order-service"
	publishTimeout = 300 * time.Millisecond
)

// Service owns the order state machine: create (reserve stock), update
// while unpaid, pay (balance debit), delete, and the read paths. Every
// mutating operation runs as one atomic unit against the stores.
type Service struct {
	orders    domain.Repository
	users     domuser.Repository
	stock     Inventory
	atomic    storage.Atomic
	publisher domoutbox.Publisher
	tracer    trace.Tracer
}

func NewService(
	orders domain.Repository,
	users domuser.Repository,
	stock Inventory,
	atomic storage.Atomic,
	publisher domoutbox.Publisher,
) *Service {
	return &Service{
		orders:    orders,
		users:     users,
		stock:     stock,
		atomic:    atomic,
		publisher: publisher,
		tracer:    otel.Tracer(tracerName),
	}
}

// Create reserves stock for the requested items and persists a NOT_PAID
// order owned by the given user. The reservation and the order save are
// one unit: if anything fails, no stock stays decremented.
func (s *Service) Create(ctx context.Context, userID int64, items []inventory.ItemRequest) (o *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Create",
		trace.WithAttributes(attribute.Int64("order.user_id", userID)),
	)
	defer func() { endSpan(span, err) }()

	if len(items) == 0 {
		return nil, domain.ErrNoItems
	}

	err = s.atomic.Within(ctx, func(ctx context.Context) error {
		if _, err := s.users.FindByID(ctx, userID); err != nil {
			return err
		}

		snapshots, err := s.stock.Reserve(ctx, items)
		if err != nil {
			return err
		}

		o, err = domain.New(userID, snapshots)
		if err != nil {
			return err
		}
		return s.orders.Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.id", o.ID))
	s.publish(ctx, domain.NewCreatedEvent(o))
	logging.FromContext(ctx).Info("order_created",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", o.UserID),
		zap.Int64("sum_cents", o.SumCents),
	)
	return o, nil
}

// Get fetches one order aggregate.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// Update replaces the line items of an unpaid order. The sum is
// recomputed from the requested items at current catalog prices, not
// from the old snapshots.
func (s *Service) Update(ctx context.Context, id int64, items []inventory.ItemRequest) (o *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Update",
		trace.WithAttributes(attribute.Int64("order.id", id)),
	)
	defer func() { endSpan(span, err) }()

	if len(items) == 0 {
		return nil, domain.ErrNoItems
	}

	err = s.atomic.Within(ctx, func(ctx context.Context) error {
		o, err = s.orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !o.Editable() {
			return domain.ErrNotEditable
		}

		updated, err := s.stock.Reconcile(ctx, o.Items, items)
		if err != nil {
			return err
		}
		if err := o.ReplaceItems(updated); err != nil {
			return err
		}
		return s.orders.Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.NewUpdatedEvent(o))
	logging.FromContext(ctx).Info("order_updated",
		zap.Int64("order_id", o.ID),
		zap.Int64("sum_cents", o.SumCents),
	)
	return o, nil
}

// Pay debits the owning user's balance by the order sum and flips the
// order to PAID. Balance and status change together or not at all.
func (s *Service) Pay(ctx context.Context, id int64) (o *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Pay",
		trace.WithAttributes(attribute.Int64("order.id", id)),
	)
	defer func() { endSpan(span, err) }()

	err = s.atomic.Within(ctx, func(ctx context.Context) error {
		o, err = s.orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status == domain.StatusPaid {
			return domain.ErrAlreadyPaid
		}

		owner, err := s.users.FindByID(ctx, o.UserID)
		if err != nil {
			return err
		}
		if err := owner.Debit(o.SumCents); err != nil {
			return err
		}
		if err := o.MarkPaid(); err != nil {
			return err
		}

		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		return s.users.Save(ctx, owner)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.NewPaidEvent(o))
	logging.FromContext(ctx).Info("order_paid",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", o.UserID),
		zap.Int64("sum_cents", o.SumCents),
	)
	return o, nil
}

// Delete removes the order unconditionally. No stock is released here:
// restoring reservations is the expiry worker's job, and a paid order's
// stock is gone for good.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Delete",
		trace.WithAttributes(attribute.Int64("order.id", id)),
	)
	defer func() { endSpan(span, err) }()

	err = s.atomic.Within(ctx, func(ctx context.Context) error {
		if _, err := s.orders.FindByID(ctx, id); err != nil {
			return err
		}
		return s.orders.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, domain.NewDeletedEvent(id))
	logging.FromContext(ctx).Info("order_deleted", zap.Int64("order_id", id))
	return nil
}

// List returns every order.
func (s *Service) List(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.FindAll(ctx)
}

// ListByUser returns the orders owned by one user.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return s.orders.FindByUserID(ctx, userID)
}

func (s *Service) publish(ctx context.Context, e domoutbox.Event) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, e); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed",
			zap.String("event", e.EventName()),
			zap.Error(err),
		)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
