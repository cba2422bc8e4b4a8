package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onboardflow/onboardflow/internal/member"
	"github.com/onboardflow/onboardflow/pkg/cerr"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(r, &req) {
		return
	}
	m, err := h.engine.Login(req.Email, req.Password)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), m)
}

func (h *Handler) createTeamMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     member.Role `json:"role"`
	}
	if !decode(r, &req) {
		return
	}
	m, err := h.engine.AddTeamMember(req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), m)
}

func (h *Handler) updateTeamMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     member.Role `json:"role"`
		Avatar   string      `json:"avatar"`
	}
	if !decode(r, &req) {
		return
	}
	m, err := h.engine.UpdateTeamMember(&member.TeamMember{
		ID:       chi.URLParam(r, "memberID"),
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Avatar:   req.Avatar,
	})
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), m)
}

func (h *Handler) deleteTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteTeamMember(chi.URLParam(r, "memberID")); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), map[string]bool{"deleted": true})
}

func (h *Handler) setWorkflowDeadline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskTitle string `json:"taskTitle"`
		Days      int    `json:"days"`
	}
	if !decode(r, &req) {
		return
	}
	if err := h.engine.SetWorkflowDeadline(req.TaskTitle, req.Days); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), map[string]any{"taskTitle": req.TaskTitle, "days": req.Days})
}
