package msgbus

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNotRegistered is returned by AwaitMessage for an unknown participant.
var ErrNotRegistered = errors.New("msgbus: participant not registered")

type promiseEntry struct {
	promise *Promise[any]
	target  string
}

// Bus routes messages between participants. Events go to exactly one
// subscriber, rotated round-robin; broadcasts fan out to every
// subscriber. Each registered participant owns one FIFO mailbox.
//
// The bus is constructed explicitly and handed to the operators at
// startup; there is no package-level instance.
type Bus struct {
	mu          sync.Mutex
	mailboxes   map[string]*mailbox
	subscribers map[Kind][]string
	promises    map[uuid.UUID]promiseEntry
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{
		mailboxes:   make(map[string]*mailbox),
		subscribers: make(map[Kind][]string),
		promises:    make(map[uuid.UUID]promiseEntry),
	}
}

// Register creates a mailbox for the named participant. Registering an
// already-registered name keeps the existing mailbox.
func (b *Bus) Register(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.mailboxes[name]; !ok {
		b.mailboxes[name] = newMailbox()
	}
}

// Unregister removes the participant's mailbox, drops it from every
// subscription list, and discards pending promises targeted at it.
func (b *Bus) Unregister(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	mb, ok := b.mailboxes[name]
	if !ok {
		return
	}
	delete(b.mailboxes, name)
	mb.close()
	for kind, subs := range b.subscribers {
		b.subscribers[kind] = removeName(subs, name)
	}
	for id, entry := range b.promises {
		if entry.target == name {
			delete(b.promises, id)
		}
	}
}

// SubscribeEvent adds the participant to the ordered subscriber list for
// the event kind. Idempotent; insertion order drives the round-robin.
func (b *Bus) SubscribeEvent(kind Kind, name string) {
	b.subscribe(kind, name)
}

// SubscribeBroadcast adds the participant to the subscriber list for the
// broadcast kind. Idempotent.
func (b *Bus) SubscribeBroadcast(kind Kind, name string) {
	b.subscribe(kind, name)
}

func (b *Bus) subscribe(kind Kind, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subscribers[kind] {
		if s == name {
			return
		}
	}
	b.subscribers[kind] = append(b.subscribers[kind], name)
}

// SendEvent delivers e to the subscriber at the head of the kind's list
// and rotates it to the tail. Returns the promise for the event's
// result, or nil when no subscriber exists.
func (b *Bus) SendEvent(e Event) *Promise[any] {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[e.Kind()]
	if len(subs) == 0 {
		return nil
	}
	head := subs[0]
	copy(subs, subs[1:])
	subs[len(subs)-1] = head

	p := NewPromise[any]()
	b.promises[e.EventID()] = promiseEntry{promise: p, target: head}

	if mb, ok := b.mailboxes[head]; ok {
		mb.put(e)
	}
	return p
}

// SendBroadcast enqueues m into the mailbox of every current subscriber
// of its kind. The bus lock is held across the fan-out, so two
// broadcasts are observed in the same order by every recipient.
func (b *Bus) SendBroadcast(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, name := range b.subscribers[m.Kind()] {
		if mb, ok := b.mailboxes[name]; ok {
			mb.put(m)
		}
	}
}

// Complete resolves the promise recorded for e. Unknown events are
// ignored.
func (b *Bus) Complete(e Event, result any) {
	b.mu.Lock()
	entry, ok := b.promises[e.EventID()]
	b.mu.Unlock()
	if ok {
		entry.promise.Resolve(result)
	}
}

// AwaitMessage blocks until a message is available in the participant's
// mailbox and returns it. Returns ErrNotRegistered when the participant
// is not registered, including as soon as it has been unregistered;
// messages still queued at that moment are not returned to later calls.
func (b *Bus) AwaitMessage(name string) (Message, error) {
	b.mu.Lock()
	mb, ok := b.mailboxes[name]
	b.mu.Unlock()
	if !ok {
		return nil, ErrNotRegistered
	}
	m, ok := mb.take()
	if !ok {
		return nil, ErrNotRegistered
	}
	return m, nil
}

// Registered reports whether the named participant currently has a
// mailbox.
func (b *Bus) Registered(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.mailboxes[name]
	return ok
}

// MailboxLen returns the number of queued messages for the participant,
// or zero if it is not registered.
func (b *Bus) MailboxLen(name string) int {
	b.mu.Lock()
	mb, ok := b.mailboxes[name]
	b.mu.Unlock()
	if !ok {
		return 0
	}
	return mb.len()
}

func removeName(subs []string, name string) []string {
	out := subs[:0]
	for _, s := range subs {
		if s != name {
			out = append(out, s)
		}
	}
	return out
}
