package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/camp-scoreboard/internal/usecase"
)

func (h *Handler) ResolveRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveRound")
	defer span.End()

	var req resolveRoundRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	day, err := parseOptionalDay(req.Day)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.roundService.Resolve(ctx, usecase.ResolveRoundInput{GameID: req.GameID, Day: day})
	if err != nil {
		h.logger.WarnContext(ctx, "resolve round failed", "game_id", req.GameID, "day", req.Day, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundToDTO(item))
}

func (h *Handler) AddPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddPoints")
	defer span.End()

	identity, err := requirePrincipalIdentity(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req addPointsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	day, err := parseOptionalDay(req.Day)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.AddPointsInput{
		GameID:    req.GameID,
		Day:       day,
		RoundID:   req.RoundID,
		TeamID:    req.TeamID,
		PlayerID:  req.PlayerID,
		Points:    req.Points,
		Reason:    req.Reason,
		CreatedBy: identity,
	}
	if req.MVP != nil {
		input.MVP = &usecase.MVPAward{PlayerID: req.MVP.PlayerID, Points: req.MVP.Points}
	}

	result, err := h.scoreService.AddPoints(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "add points failed",
			"team_id", req.TeamID,
			"game_id", req.GameID,
			"points", req.Points,
			"created_by", identity,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, scoreResultToDTO(ctx, result))
}

func (h *Handler) AddTeamPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddTeamPoints")
	defer span.End()

	identity, err := requirePrincipalIdentity(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req addTeamPointsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	day, err := parseOptionalDay(req.Day)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoreService.AddTeamPoints(ctx, usecase.AddTeamPointsInput{
		GameID:       req.GameID,
		Day:          day,
		TeamID:       req.TeamID,
		TotalPoints:  req.TotalPoints,
		Distribution: req.Distribution,
		Reason:       req.Reason,
		CreatedBy:    identity,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add team points failed",
			"team_id", req.TeamID,
			"game_id", req.GameID,
			"total_points", req.TotalPoints,
			"created_by", identity,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, scoreResultToDTO(ctx, result))
}

func (h *Handler) UndoEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UndoEntry")
	defer span.End()

	identity, err := requirePrincipalIdentity(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entryID := strings.TrimSpace(r.PathValue("entryID"))
	result, err := h.undoService.Undo(ctx, usecase.UndoInput{EntryID: entryID, CreatedBy: identity})
	if err != nil {
		h.logger.WarnContext(ctx, "undo entry failed", "entry_id", entryID, "created_by", identity, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, undoResultDTO{
		Original: entryViewToDTO(result.Original),
		Reversal: entryToDTO(result.Reversal),
		NewTotal: result.NewTotal,
	})
}

func (h *Handler) RevealDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RevealDay")
	defer span.End()

	identity, err := requirePrincipalIdentity(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	day, err := parseOptionalDay(r.PathValue("day"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.revealService.RevealDay(ctx, usecase.RevealDayInput{Day: day, LockedBy: identity})
	if err != nil {
		h.logger.WarnContext(ctx, "reveal day failed", "day", day.String(), "locked_by", identity, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, snapshotToDTO(item))
}
