// Package pushnotification delivers web push messages to every registered
// browser subscription and prunes subscriptions the push service reports as
// gone.
package pushnotification

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/onboardflow/onboardflow/internal/config"
	"github.com/onboardflow/onboardflow/internal/pushsubscription"
	"github.com/onboardflow/onboardflow/pkg/cerr"
)

// Message is the payload the service worker renders.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag,omitempty"`
	URL   string `json:"url,omitempty"`
}

type Sender struct {
	repo    pushsubscription.Repository
	vapid   *config.VAPIDEnv
	enabled bool
}

func NewSender(repo pushsubscription.Repository, vapid *config.VAPIDEnv) *Sender {
	return &Sender{
		repo:    repo,
		vapid:   vapid,
		enabled: vapid != nil && vapid.VAPIDPublicKey != "" && vapid.VAPIDPrivateKey != "",
	}
}

// Enabled reports whether VAPID keys are configured. A disabled sender
// accepts Broadcast calls and does nothing.
func (s *Sender) Enabled() bool {
	return s.enabled
}

// Broadcast sends the message to every stored subscription. Delivery
// failures are logged per subscription and never fail the broadcast; a 404
// or 410 from the push service removes the subscription.
func (s *Sender) Broadcast(ctx context.Context, msg *Message) error {
	if !s.enabled {
		return nil
	}

	subs, err := s.repo.List(ctx)
	if err != nil {
		return cerr.NewError(cerr.Internal, "failed to list push subscriptions", err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return cerr.NewError(cerr.Internal, "failed to encode push message", err)
	}

	for _, sub := range subs {
		if err := s.send(ctx, sub, payload); err != nil {
			slog.Warn("push delivery failed", "endpoint", sub.Endpoint, "error", err)
		}
	}
	return nil
}

func (s *Sender) send(ctx context.Context, sub *pushsubscription.Subscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		Subscriber:      s.vapid.VAPIDContact,
		VAPIDPublicKey:  s.vapid.VAPIDPublicKey,
		VAPIDPrivateKey: s.vapid.VAPIDPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		// Subscription expired or was revoked by the push service.
		if err := s.repo.Delete(ctx, sub.ID); err != nil {
			slog.Warn("failed to prune expired push subscription", "id", sub.ID, "error", err)
		}
	}
	return nil
}
