package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/usecase"
)

type Handler struct {
	directoryService   *usecase.DirectoryService
	leaderboardService *usecase.LeaderboardService
	roundService       *usecase.RoundService
	scoreService       *usecase.ScoreService
	undoService        *usecase.UndoService
	revealService      *usecase.RevealService
	reconcileService   *usecase.ReconcileService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	directoryService *usecase.DirectoryService,
	leaderboardService *usecase.LeaderboardService,
	roundService *usecase.RoundService,
	scoreService *usecase.ScoreService,
	undoService *usecase.UndoService,
	revealService *usecase.RevealService,
	reconcileService *usecase.ReconcileService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		directoryService:   directoryService,
		leaderboardService: leaderboardService,
		roundService:       roundService,
		scoreService:       scoreService,
		undoService:        undoService,
		revealService:      revealService,
		reconcileService:   reconcileService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON reads a strict JSON body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func requirePrincipalIdentity(ctx context.Context) (string, error) {
	principal, ok := principalFromContext(ctx)
	if !ok || strings.TrimSpace(principal.Identity) == "" {
		return "", fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal.Identity, nil
}

// parseOptionalDay returns the zero Day for a blank value.
func parseOptionalDay(value string) (round.Day, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	day, err := round.ParseDay(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return day, nil
}
