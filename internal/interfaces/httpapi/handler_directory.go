package httpapi

import (
	"net/http"
	"strconv"
	"strings"
)

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.directoryService.ListTeams(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListPlayersByTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayersByTeam")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	players, err := h.directoryService.ListPlayersByTeam(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	games, err := h.directoryService.ListGames(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameToDTO(g))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	rows, err := h.leaderboardService.Live(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingRowsToDTO(ctx, rows))
}

func (h *Handler) GetGameStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameStandings")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	item, rows, err := h.leaderboardService.GameStandings(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get game standings failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameStandingsDTO{
		Game:  gameToDTO(item),
		Teams: standingRowsToDTO(ctx, rows),
	})
}

func (h *Handler) ListRecentScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRecentScores")
	defer span.End()

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil {
			limit = parsed
		}
	}

	entries, err := h.leaderboardService.RecentEntries(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list recent scores failed", "limit", limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]entryViewDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, entryViewToDTO(e))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSnapshots")
	defer span.End()

	snapshots, err := h.revealService.ListSnapshots(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list snapshots failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]snapshotSummaryDTO, 0, len(snapshots))
	for _, s := range snapshots {
		items = append(items, snapshotToSummaryDTO(s))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshot")
	defer span.End()

	day, err := parseOptionalDay(r.PathValue("day"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.revealService.GetSnapshot(ctx, day)
	if err != nil {
		h.logger.WarnContext(ctx, "get snapshot failed", "day", day.String(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(item))
}
