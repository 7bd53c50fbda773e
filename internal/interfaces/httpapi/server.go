package httpapi

import (
	"net/http"

	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/metrics"
)

type RouterConfig struct {
	ServiceName        string
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	InternalJobToken   string
	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(
	handler *Handler,
	verifier TokenVerifier,
	logger *logging.Logger,
	recorder *metrics.Recorder,
	cfg RouterConfig,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.SwaggerEnabled, cfg.MetricsHandler)
	registerPublicRoutes(mux, handler)
	registerAdminRoutes(mux, handler, verifier)
	registerInternalJobRoutes(mux, handler, cfg.InternalJobToken)

	return RequestTracing(cfg.ServiceName, RequestLogging(logger, recorder, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, captureRoute(mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
