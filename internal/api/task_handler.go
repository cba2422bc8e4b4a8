package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/onboardflow/onboardflow/internal/engine"
	"github.com/onboardflow/onboardflow/internal/task"
	"github.com/onboardflow/onboardflow/pkg/cerr"
)

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var input engine.NewTaskInput
	if !decode(r, &input) {
		return
	}
	t, err := h.engine.AddTask(input)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), t)
}

func (h *Handler) toggleTimer(w http.ResponseWriter, r *http.Request) {
	memberID := actingMemberID(r)
	if memberID == "" {
		cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "missing "+memberIDHeader+" header", nil)
		return
	}
	t, err := h.engine.ToggleTimer(chi.URLParam(r, "taskID"), memberID)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), t)
}

func (h *Handler) logProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note                 string   `json:"note"`
		CompletionPercentage int      `json:"completionPercentage"`
		NewRequirements      []string `json:"newRequirements"`
		NewAddons            []string `json:"newAddons"`
	}
	if !decode(r, &req) {
		return
	}
	t, err := h.engine.LogProgress(
		chi.URLParam(r, "taskID"),
		actingMemberID(r),
		req.Note,
		req.CompletionPercentage,
		req.NewRequirements,
		req.NewAddons,
	)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), t)
}

func (h *Handler) completeTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.engine.CompleteTask(chi.URLParam(r, "taskID"), actingMemberID(r))
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), t)
}

func (h *Handler) toggleSubtask(w http.ResponseWriter, r *http.Request) {
	t, err := h.engine.ToggleSubtask(chi.URLParam(r, "taskID"), chi.URLParam(r, "subtaskID"))
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), t)
}

func (h *Handler) updatePriority(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Priority task.Priority `json:"priority"`
	}
	if !decode(r, &req) {
		return
	}
	t, err := h.engine.UpdatePriority(chi.URLParam(r, "taskID"), req.Priority)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), t)
}

func (h *Handler) updateDeadline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Deadline time.Time `json:"deadline"`
	}
	if !decode(r, &req) {
		return
	}
	t, err := h.engine.UpdateDeadline(chi.URLParam(r, "taskID"), req.Deadline)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), t)
}

func (h *Handler) toggleAssignee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"memberId"`
	}
	if !decode(r, &req) {
		return
	}
	t, err := h.engine.ToggleAssignee(chi.URLParam(r, "taskID"), req.MemberID)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), t)
}

func (h *Handler) setAssignees(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberIDs []string `json:"memberIds"`
	}
	if !decode(r, &req) {
		return
	}
	t, err := h.engine.SetAssignees(chi.URLParam(r, "taskID"), req.MemberIDs)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), t)
}
