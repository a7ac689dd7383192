package websocket

import (
	"encoding/json"
	"log"

	"notesaides-api/internal/domain"
	"notesaides-api/internal/event"
)

// fanoutKey identifies the notifier's bus subscription. Attaching again
// under the same key replaces the old handler, so a restarted notifier
// cannot cause duplicate delivery.
const fanoutKey = "ws-fanout"

// Notifier bridges the event bus to the hub: one ChangeEvent in, one
// message out to every live connection of the affected user.
type Notifier struct {
	hub *Hub
	bus *event.Bus
}

func NewNotifier(hub *Hub, bus *event.Bus) *Notifier {
	return &Notifier{
		hub: hub,
		bus: bus,
	}
}

// Attach subscribes the notifier to the bus. Call once at startup.
func (n *Notifier) Attach() {
	n.bus.Subscribe(fanoutKey, n.handle)
}

// Detach removes the subscription; used by shutdown and tests.
func (n *Notifier) Detach() {
	n.bus.Unsubscribe(fanoutKey)
}

func (n *Notifier) handle(e domain.ChangeEvent) {
	msg, err := MessageFromEvent(e)
	if err != nil {
		log.Printf("[WS] dropping event: %v", err)
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS] failed to marshal notification: %v", err)
		return
	}

	n.hub.BroadcastToUser(e.UserID, payload)
}
