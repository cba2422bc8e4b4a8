package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onboardflow/onboardflow/internal/client"
	"github.com/onboardflow/onboardflow/internal/engine"
	"github.com/onboardflow/onboardflow/pkg/cerr"
)

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var input engine.NewClientInput
	if !decode(r, &input) {
		return
	}
	c, err := h.engine.AddClient(input)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), c)
}

func (h *Handler) updateClientStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status client.Status `json:"status"`
	}
	if !decode(r, &req) {
		return
	}
	c, err := h.engine.UpdateClientStatus(chi.URLParam(r, "clientID"), req.Status)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), c)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		ClientID    string `json:"clientId"`
		Description string `json:"description"`
	}
	if !decode(r, &req) {
		return
	}
	p, err := h.engine.AddProject(req.Name, req.ClientID, req.Description)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), p)
}
