package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/app/internal/pkg/logging"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Instrument attaches a request-scoped logger (request id included) to
// the context and records per-request metrics. Route labels use the
// method plus the raw path's first segment to keep cardinality low.
func Instrument(
	base *zap.Logger,
	requests *prometheus.CounterVec, // http_requests_total{method,status}
	durations *prometheus.HistogramVec, // http_request_duration_seconds{method}
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get("X-Request-ID")
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", rid)

			reqLogger := base.With(
				zap.String("request_id", rid),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			ctx := logging.ContextWithLogger(r.Context(), reqLogger)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			if requests != nil {
				requests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
			}
			if durations != nil {
				durations.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
			}
			reqLogger.Info("http_request_done",
				zap.Int("status", rec.status),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
