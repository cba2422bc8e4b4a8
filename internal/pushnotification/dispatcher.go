package pushnotification

import (
	"context"
	"fmt"

	"github.com/onboardflow/onboardflow/internal/eventbus"
	"github.com/onboardflow/onboardflow/internal/task"
)

const eventBufferSize = 64

// Dispatcher turns engine events into push broadcasts. It notifies on
// urgent escalations and on every pipeline move, including the final
// transition to Active.
type Dispatcher struct {
	sender *Sender
	bus    *eventbus.Bus
}

func NewDispatcher(sender *Sender, bus *eventbus.Bus) *Dispatcher {
	return &Dispatcher{sender: sender, bus: bus}
}

// Run consumes bus events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	id, events := d.bus.Subscribe(eventBufferSize)
	defer d.bus.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if msg := d.messageFor(event); msg != nil {
				_ = d.sender.Broadcast(ctx, msg)
			}
		}
	}
}

func (d *Dispatcher) messageFor(event *eventbus.Event) *Message {
	switch event.Type {
	case eventbus.EventTypeTaskEscalated:
		if task.Priority(event.Payload) != task.PriorityUrgent {
			return nil
		}
		return &Message{
			Title: "Task escalated to Urgent",
			Body:  fmt.Sprintf("%q is overdue and needs attention now.", event.Metadata["title"]),
			Tag:   "escalation-" + event.ResourceID,
		}
	case eventbus.EventTypeClientStageChanged:
		return &Message{
			Title: "Client moved to " + event.Payload,
			Body:  fmt.Sprintf("%s entered %s.", event.Metadata["businessName"], event.Payload),
			Tag:   "stage-" + event.ResourceID,
		}
	case eventbus.EventTypeClientOnboarded:
		return &Message{
			Title: "Client onboarded",
			Body:  fmt.Sprintf("%s completed the onboarding pipeline.", event.Payload),
			Tag:   "onboarded-" + event.ResourceID,
		}
	default:
		return nil
	}
}
