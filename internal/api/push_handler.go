package api

import (
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/onboardflow/onboardflow/internal/pushsubscription"
	"github.com/onboardflow/onboardflow/pkg/cerr"
)

func (h *Handler) getVapidPublicKey(w http.ResponseWriter, r *http.Request) {
	if h.vapidPublicKey == "" {
		cerr.SetNewJSONError(r.Context(), cerr.FailedPrecondition, "VAPID keys not configured", nil)
		return
	}
	cerr.SetJSONResponse(r.Context(), map[string]string{"publicKey": h.vapidPublicKey})
}

// subscribePush registers a browser push subscription. Re-registering an
// endpoint already on file returns the stored record unchanged.
func (h *Handler) subscribePush(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if !decode(r, &req) {
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "endpoint and keys are required", nil)
		return
	}

	ctx := r.Context()
	if existing, err := h.pushRepo.FindByEndpoint(ctx, req.Endpoint); err == nil {
		cerr.SetJSONResponse(ctx, existing)
		return
	} else if !cerr.IsCode(err, cerr.NotFound) {
		cerr.SetJSONError(ctx, err)
		return
	}

	sub := &pushsubscription.Subscription{
		ID:        ulid.Make().String(),
		Endpoint:  req.Endpoint,
		P256dhKey: req.Keys.P256dh,
		AuthKey:   req.Keys.Auth,
		CreatedAt: time.Now(),
	}
	if err := h.pushRepo.Create(ctx, sub); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, sub)
}

func (h *Handler) unsubscribePush(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if !decode(r, &req) {
		return
	}
	if err := h.pushRepo.DeleteByEndpoint(r.Context(), req.Endpoint); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), map[string]bool{"deleted": true})
}
