package httpapi

import (
	"net/http"

	"github.com/riskibarqy/camp-scoreboard/internal/usecase"
)

func (h *Handler) RunReconcileJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunReconcileJob")
	defer span.End()

	var req reconcileJobRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.reconcileService.Reconcile(ctx, usecase.ReconcileInput{
		TeamIDs: req.TeamIDs,
		DryRun:  req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run reconcile job failed", "team_ids", req.TeamIDs, "dry_run", req.DryRun, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
