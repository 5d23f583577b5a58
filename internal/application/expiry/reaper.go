package expiry

import (
	"context"
	"errors"
	"sync"
	"time"

	domain "github.com/Zhima-Mochi/minishop-orders/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// DefaultInterval is how often the sweep runs.
	DefaultInterval = 5 * time.Minute
	// DefaultTTL is how long an unpaid order may stay open.
	DefaultTTL = 10 * time.Minute
)

// StockReleaser restores the reserved stock of a set of line items.
type StockReleaser interface {
	Release(ctx context.Context, items []domain.LineItem) error
}

// Metrics are the reaper's counters. Nil fields are allowed and skipped.
type Metrics struct {
	Expired  prometheus.Counter
	Failures prometheus.Counter
}

// Reaper periodically removes unpaid orders past their TTL, restoring
// their reserved stock first. Each order is reaped inside its own atomic
// unit so a concurrent payment either completes before the reap (the
// reaper skips a PAID order) or fails with NotFound afterwards.
type Reaper struct {
	orders   domain.Repository
	releaser StockReleaser
	atomic   storage.Atomic
	bus      domoutbox.Publisher
	log      *zap.Logger
	metrics  Metrics

	interval time.Duration
	ttl      time.Duration
	now      func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(
	orders domain.Repository,
	releaser StockReleaser,
	atomic storage.Atomic,
	bus domoutbox.Publisher,
	log *zap.Logger,
	interval, ttl time.Duration,
	metrics Metrics,
) *Reaper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Reaper{
		orders:   orders,
		releaser: releaser,
		atomic:   atomic,
		bus:      bus,
		log:      log.With(zap.String("component", "expiry_reaper")),
		metrics:  metrics,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. Safe to call once; Stop shuts it down.
func (r *Reaper) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		bg, cancel := context.WithCancel(ctx)
		r.cancel = cancel
		go r.loop(bg)
		r.log.Info("reaper_started",
			zap.Duration("interval", r.interval),
			zap.Duration("ttl", r.ttl),
		)
	})
}

// Stop shuts the loop down and waits for it to drain. Stop without a
// prior Start is a no-op.
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() {
		if r.cancel == nil {
			return
		}
		r.cancel()
		<-r.done
		r.log.Info("reaper_stopped")
	})
}

func (r *Reaper) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep walks every unpaid order and reaps the ones past the TTL. It
// returns the number of orders expired in this pass.
func (r *Reaper) Sweep(ctx context.Context) int {
	unpaid, err := r.orders.FindUnpaid(ctx)
	if err != nil {
		r.log.Error("reaper_scan_failed", zap.Error(err))
		r.countFailure()
		return 0
	}

	now := r.now()
	expired := 0
	for _, o := range unpaid {
		if o.Age(now) < r.ttl {
			continue
		}
		switch err := r.reapOne(ctx, o.ID); {
		case err == nil:
			expired++
			if r.metrics.Expired != nil {
				r.metrics.Expired.Inc()
			}
		case errors.Is(err, errSkipped):
			// lost the race to a payment or delete; nothing to do
		default:
			r.log.Error("reaper_release_failed",
				zap.Int64("order_id", o.ID),
				zap.Error(err),
			)
			r.countFailure()
		}
	}

	if expired > 0 {
		r.log.Info("reaper_sweep_done", zap.Int("expired", expired))
	}
	return expired
}

var errSkipped = errors.New("expiry: order no longer reapable")

// reapOne re-reads the order inside the atomic unit so the decision to
// release stock is made against its current state, not the scan's
// snapshot.
func (r *Reaper) reapOne(ctx context.Context, id int64) error {
	var reaped *domain.Order
	err := r.atomic.Within(ctx, func(ctx context.Context) error {
		o, err := r.orders.FindByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return errSkipped
		}
		if err != nil {
			return err
		}
		if o.Status != domain.StatusNotPaid {
			return errSkipped
		}

		if err := r.releaser.Release(ctx, o.Items); err != nil {
			return err
		}
		if err := r.orders.Delete(ctx, o.ID); err != nil {
			return err
		}
		reaped = o
		return nil
	})
	if err != nil {
		return err
	}

	if r.bus != nil {
		if pubErr := r.bus.Publish(ctx, domain.NewExpiredEvent(reaped)); pubErr != nil {
			r.log.Warn("expired_event_publish_failed",
				zap.Int64("order_id", reaped.ID),
				zap.Error(pubErr),
			)
		}
	}
	r.log.Info("order_expired",
		zap.Int64("order_id", reaped.ID),
		zap.Int64("user_id", reaped.UserID),
	)
	return nil
}

func (r *Reaper) countFailure() {
	if r.metrics.Failures != nil {
		r.metrics.Failures.Inc()
	}
}
