package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcatalog "github.com/Zhima-Mochi/minishop-orders/app/internal/application/catalog"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/application/expiry"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/application/inventory"
	apporder "github.com/Zhima-Mochi/minishop-orders/app/internal/application/order"
	appuser "github.com/Zhima-Mochi/minishop-orders/app/internal/application/user"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/config"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/infrastructure/audit"
	httptransport "github.com/Zhima-Mochi/minishop-orders/app/internal/infrastructure/http"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/pkg/logging"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "status"},
	)
	httpDurations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	orderEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_events_total",
			Help: "Count of order lifecycle events by name.",
		},
		[]string{"event"},
	)
	ordersExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_expired_total",
		Help: "Count of unpaid orders removed by the expiry reaper.",
	})
	reaperFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reaper_failures_total",
		Help: "Count of reaper passes or releases that failed.",
	})
	prometheus.MustRegister(httpRequests, httpDurations, orderEvents, ordersExpired, reaperFailures)

	store := memory.NewStore()

	bus := outbox.NewBus(baseLogger)
	bus.Start(context.Background())
	defer bus.Stop()

	reconciler := inventory.NewReconciler(store.Products(), store.LineItems())
	orderService := apporder.NewService(store.Orders(), store.Users(), reconciler, store, bus)
	catalogService := appcatalog.NewService(store.Products(), store)
	userService := appuser.NewService(store.Users())

	auditWorker := audit.New(bus, baseLogger, orderEvents)
	auditWorker.Start()

	reaper := expiry.New(
		store.Orders(),
		reconciler,
		store,
		bus,
		baseLogger,
		cfg.ReaperInterval,
		cfg.OrderTTL,
		expiry.Metrics{Expired: ordersExpired, Failures: reaperFailures},
	)
	reaper.Start(context.Background())
	defer reaper.Stop()

	handler := httptransport.NewHandler(orderService, catalogService, userService)
	router := chi.NewRouter()
	router.Use(httptransport.Instrument(baseLogger, httpRequests, httpDurations))
	router.Handle("/metrics", promhttp.Handler())
	handler.Register(router)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		baseLogger.Info("http_server_stopped")
	}
}
