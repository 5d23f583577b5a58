package audit

import (
	"context"

	domorder "github.com/Zhima-Mochi/minishop-orders/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/app/internal/domain/outbox"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Worker writes an audit log line for every order lifecycle event and
// counts them per event name.
type Worker struct {
	subscriber domoutbox.Subscriber
	log        *zap.Logger
	events     *prometheus.CounterVec // order_events_total{event}
}

func New(subscriber domoutbox.Subscriber, log *zap.Logger, events *prometheus.CounterVec) *Worker {
	return &Worker{
		subscriber: subscriber,
		log:        log.With(zap.String("component", "audit_worker")),
		events:     events,
	}
}

func (w *Worker) Start() {
	for _, name := range []string{
		domorder.CreatedEvent{}.EventName(),
		domorder.UpdatedEvent{}.EventName(),
		domorder.PaidEvent{}.EventName(),
		domorder.DeletedEvent{}.EventName(),
		domorder.ExpiredEvent{}.EventName(),
	} {
		w.subscriber.Subscribe(name, w.handle)
	}
}

func (w *Worker) handle(ctx context.Context, e domoutbox.Event) error {
	_ = ctx
	name := e.EventName()
	fields := []zap.Field{zap.String("event", name)}

	switch evt := e.(type) {
	case domorder.CreatedEvent:
		fields = append(fields,
			zap.String("event_id", evt.EventID),
			zap.Int64("order_id", evt.OrderID),
			zap.Int64("user_id", evt.UserID),
			zap.Int64("sum_cents", evt.SumCents),
		)
	case domorder.UpdatedEvent:
		fields = append(fields,
			zap.String("event_id", evt.EventID),
			zap.Int64("order_id", evt.OrderID),
			zap.Int64("sum_cents", evt.SumCents),
		)
	case domorder.PaidEvent:
		fields = append(fields,
			zap.String("event_id", evt.EventID),
			zap.Int64("order_id", evt.OrderID),
			zap.Int64("user_id", evt.UserID),
			zap.Int64("sum_cents", evt.SumCents),
		)
	case domorder.DeletedEvent:
		fields = append(fields,
			zap.String("event_id", evt.EventID),
			zap.Int64("order_id", evt.OrderID),
		)
	case domorder.ExpiredEvent:
		fields = append(fields,
			zap.String("event_id", evt.EventID),
			zap.Int64("order_id", evt.OrderID),
			zap.Int64("user_id", evt.UserID),
		)
	}

	w.log.Info("order_event", fields...)
	if w.events != nil {
		w.events.WithLabelValues(name).Inc()
	}
	return nil
}
