// Package api exposes the engine over a JSON HTTP surface. Handlers record
// their result on the request context; the cerr middleware turns it into the
// response body and status.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onboardflow/onboardflow/internal/engine"
	"github.com/onboardflow/onboardflow/internal/eventbus"
	"github.com/onboardflow/onboardflow/internal/pushsubscription"
	"github.com/onboardflow/onboardflow/pkg/cerr"
	"github.com/onboardflow/onboardflow/pkg/clog"
)

// memberIDHeader identifies the acting team member on mutation requests.
const memberIDHeader = "X-Member-Id"

type Handler struct {
	engine         *engine.Engine
	bus            *eventbus.Bus
	pushRepo       pushsubscription.Repository
	vapidPublicKey string
}

func NewHandler(eng *engine.Engine, bus *eventbus.Bus, pushRepo pushsubscription.Repository, vapidPublicKey string) *Handler {
	return &Handler{
		engine:         eng,
		bus:            bus,
		pushRepo:       pushRepo,
		vapidPublicKey: vapidPublicKey,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(clog.SlogChiMiddleware())

	// The event stream writes its own response; everything else goes through
	// the JSON receiver.
	r.Get("/events", h.streamEvents)

	r.Group(func(r chi.Router) {
		r.Use(cerr.NewJSONResponseChiMiddleware())

		r.Get("/state", h.getState)
		r.Post("/login", h.login)

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", h.createClient)
			r.Patch("/{clientID}/status", h.updateClientStatus)
		})

		r.Post("/projects", h.createProject)

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", h.createTask)
			r.Post("/{taskID}/timer", h.toggleTimer)
			r.Post("/{taskID}/progress", h.logProgress)
			r.Post("/{taskID}/complete", h.completeTask)
			r.Post("/{taskID}/subtasks/{subtaskID}/toggle", h.toggleSubtask)
			r.Patch("/{taskID}/priority", h.updatePriority)
			r.Patch("/{taskID}/deadline", h.updateDeadline)
			r.Post("/{taskID}/assignees/toggle", h.toggleAssignee)
			r.Put("/{taskID}/assignees", h.setAssignees)
		})

		r.Route("/team", func(r chi.Router) {
			r.Post("/", h.createTeamMember)
			r.Put("/{memberID}", h.updateTeamMember)
			r.Delete("/{memberID}", h.deleteTeamMember)
		})

		r.Put("/settings/workflow-deadlines", h.setWorkflowDeadline)

		r.Route("/push", func(r chi.Router) {
			r.Get("/vapid-public-key", h.getVapidPublicKey)
			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/", h.subscribePush)
				r.Delete("/", h.unsubscribePush)
			})
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})
	})

	return r
}

func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), h.engine.Snapshot())
}

// decode unmarshals the request body into v, recording an InvalidArgument on
// failure. Callers bail out when it returns false.
func decode(r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "invalid request body", err)
		return false
	}
	return true
}

func actingMemberID(r *http.Request) string {
	return r.Header.Get(memberIDHeader)
}
