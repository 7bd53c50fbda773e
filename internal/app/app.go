package app

import (
	"context"
	"net/http"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/camp-scoreboard/internal/config"
	"github.com/riskibarqy/camp-scoreboard/internal/infrastructure/account"
	"github.com/riskibarqy/camp-scoreboard/internal/infrastructure/events"
	"github.com/riskibarqy/camp-scoreboard/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/camp-scoreboard/internal/platform/id"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/metrics"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/resilience"
	"github.com/riskibarqy/camp-scoreboard/internal/usecase"
)

// Services are the use cases every entry point shares.
type Services struct {
	Directory   *usecase.DirectoryService
	Leaderboard *usecase.LeaderboardService
	Round       *usecase.RoundService
	Score       *usecase.ScoreService
	Undo        *usecase.UndoService
	Reveal      *usecase.RevealService
	Reconcile   *usecase.ReconcileService
}

// Runtime owns the storage handle and telemetry built from one Config.
type Runtime struct {
	Config         config.Config
	Logger         *logging.Logger
	Metrics        *metrics.Recorder
	MetricsHandler http.Handler
	Services       Services
	StoreKind      string

	closeStorage   func() error
	closeTelemetry func(context.Context) error
}

func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}

	recorder, metricsHandler, shutdownMetrics, err := metrics.Setup(ctx, metrics.TelemetryConfig{
		Enabled:        cfg.MetricsEnabled,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
	})
	if err != nil {
		return nil, crerr.Wrap(err, "setup metrics")
	}

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		_ = shutdownMetrics(ctx)
		return nil, err
	}

	publisher, err := newEventPublisher(cfg, logger)
	if err != nil {
		_ = st.close()
		_ = shutdownMetrics(ctx)
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	roundSvc := usecase.NewRoundService(st.games, st.rounds, ids)
	scoringCfg := usecase.ScoringConfig{
		IndividualPointsLimit: cfg.ScoringIndividualLimit,
		TeamPointsLimit:       cfg.ScoringTeamLimit,
		ReasonMaxLength:       cfg.ScoringReasonMaxLength,
		Location:              cfg.Location,
	}

	scoreSvc := usecase.NewScoreService(
		st.tx,
		st.teams,
		st.players,
		roundSvc,
		st.entries,
		st.aggregates,
		st.snapshots,
		ids,
		publisher,
		recorder,
		scoringCfg,
		logger,
	)

	services := Services{
		Directory:   usecase.NewDirectoryService(st.teams, st.games, st.players),
		Leaderboard: usecase.NewLeaderboardService(st.teams, st.games, st.entries, st.aggregates, cfg.RecentEntriesDefaultLimit),
		Round:       roundSvc,
		Score:       scoreSvc,
		Undo:        usecase.NewUndoService(st.tx, st.entries, st.aggregates, st.snapshots, ids, publisher, recorder, cfg.ScoringReasonMaxLength, logger),
		Reveal:      usecase.NewRevealService(st.tx, st.teams, st.entries, st.snapshots, ids, publisher, recorder, logger),
		Reconcile:   usecase.NewReconcileService(st.tx, st.teams, st.entries, st.aggregates, recorder, cfg.ReconcileWorkers, logger),
	}

	logger.Info("runtime ready",
		"store", st.kind,
		"cache_enabled", cfg.CacheEnabled,
		"metrics_enabled", cfg.MetricsEnabled,
		"timezone", cfg.Location.String(),
	)

	return &Runtime{
		Config:         cfg,
		Logger:         logger,
		Metrics:        recorder,
		MetricsHandler: metricsHandler,
		Services:       services,
		StoreKind:      st.kind,
		closeStorage:   st.close,
		closeTelemetry: shutdownMetrics,
	}, nil
}

// Close releases storage and flushes metrics. Safe to call once.
func (r *Runtime) Close(ctx context.Context) error {
	var errs error
	if r.closeStorage != nil {
		if err := r.closeStorage(); err != nil {
			errs = crerr.CombineErrors(errs, crerr.Wrap(err, "close storage"))
		}
	}
	if r.closeTelemetry != nil {
		if err := r.closeTelemetry(ctx); err != nil {
			errs = crerr.CombineErrors(errs, crerr.Wrap(err, "shutdown metrics"))
		}
	}
	return errs
}

func newEventPublisher(cfg config.Config, logger *logging.Logger) (usecase.EventPublisher, error) {
	if cfg.EventsWebhookURL == "" {
		return usecase.NewLogEventPublisher(logger), nil
	}

	publisher, err := events.NewWebhookPublisher(events.WebhookPublisherConfig{
		URL:            cfg.EventsWebhookURL,
		Token:          cfg.EventsWebhookToken,
		Timeout:        cfg.EventsWebhookTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.EventsCircuitEnabled,
			FailureThreshold: cfg.EventsCircuitFailureCount,
			OpenTimeout:      cfg.EventsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.EventsCircuitHalfOpenMaxReq,
		},
	}, logger)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

func NewHTTPServer(rt *Runtime) (*http.Server, error) {
	if rt == nil {
		return nil, crerr.New("runtime is required")
	}
	cfg := rt.Config

	var verifier httpapi.TokenVerifier
	if len(cfg.AdminTokens) > 0 {
		verifier = account.NewStaticVerifier(cfg.AdminTokens, rt.Logger)
	} else {
		rt.Logger.Warn("ADMIN_TOKENS empty, admin routes will answer 503")
	}

	svc := rt.Services
	handler := httpapi.NewHandler(
		svc.Directory,
		svc.Leaderboard,
		svc.Round,
		svc.Score,
		svc.Undo,
		svc.Reveal,
		svc.Reconcile,
		rt.Logger,
	)
	router := httpapi.NewRouter(handler, verifier, rt.Logger, rt.Metrics, httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		MetricsHandler:     rt.MetricsHandler,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, crerr.New("http server addr cannot be empty")
	}

	return server, nil
}
