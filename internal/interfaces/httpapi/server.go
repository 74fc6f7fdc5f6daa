package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fantacalcio-stats/internal/platform/id"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/logging"
)

type RouterConfig struct {
	CORSAllowedOrigins []string
	MetricsEnabled     bool
	// IDGenerator assigns request ids; nil uses a random generator.
	IDGenerator id.Generator
}

func NewRouter(handler *Handler, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("http")

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.MetricsEnabled)
	registerPlayerStatsRoutes(mux, handler)

	return RequestTracing(RequestID(cfg.IDGenerator, RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "request_id", requestIDFromContext(ctx))
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
