package msgbus

import "github.com/google/uuid"

// Kind tags a message type. The alphabet is closed: every kind in the
// system is declared as a constant by the package that owns the message.
type Kind string

// Message is anything routable by the bus.
type Message interface {
	Kind() Kind
}

// Event is a message delivered to exactly one of its subscribers and
// carrying a promised result. Embed EventTag to satisfy the identity
// half of the interface.
type Event interface {
	Message
	EventID() uuid.UUID
}

// EventTag gives an event a unique identity; the bus keys the promise
// registry on it. Create with NewEventTag.
type EventTag struct {
	id uuid.UUID
}

// NewEventTag returns a tag with a fresh UUID.
func NewEventTag() EventTag {
	return EventTag{id: uuid.New()}
}

// EventID returns the event's unique identity.
func (t EventTag) EventID() uuid.UUID {
	return t.id
}
