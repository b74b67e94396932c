package msgbus

import (
	"log"
	"sync"
)

// Handler processes one message. Handlers run synchronously on the
// service goroutine and must complete before the next message is taken.
type Handler func(Message)

// Operator is the behavior a Service runs: Initialize declares
// subscriptions and installs handlers, then the service loop dispatches
// until one of the handlers calls Terminate.
type Operator interface {
	Name() string
	Initialize(s *Service)
}

// Service is the runtime every operator participates through: register
// with the bus, initialize, then loop on the mailbox dispatching each
// message to the handler installed for its kind.
type Service struct {
	name       string
	bus        *Bus
	handlers   map[Kind]Handler
	terminated bool
}

// NewService wires a service for the named operator on the given bus.
func NewService(name string, bus *Bus) *Service {
	return &Service{
		name:     name,
		bus:      bus,
		handlers: make(map[Kind]Handler),
	}
}

// Name returns the participant name used on the bus.
func (s *Service) Name() string { return s.name }

// Bus returns the bus this service is attached to.
func (s *Service) Bus() *Bus { return s.bus }

// SubscribeEvent installs h for the event kind and subscribes on the bus.
func (s *Service) SubscribeEvent(kind Kind, h Handler) {
	s.bus.SubscribeEvent(kind, s.name)
	s.handlers[kind] = h
}

// SubscribeBroadcast installs h for the broadcast kind and subscribes on
// the bus.
func (s *Service) SubscribeBroadcast(kind Kind, h Handler) {
	s.bus.SubscribeBroadcast(kind, s.name)
	s.handlers[kind] = h
}

// SendEvent posts e to one subscriber; nil when no subscriber exists.
func (s *Service) SendEvent(e Event) *Promise[any] {
	return s.bus.SendEvent(e)
}

// SendBroadcast fans m out to every subscriber of its kind.
func (s *Service) SendBroadcast(m Message) {
	s.bus.SendBroadcast(m)
}

// Complete resolves the promise of a received event.
func (s *Service) Complete(e Event, result any) {
	s.bus.Complete(e, result)
}

// Terminate makes the dispatch loop exit after the current handler
// returns.
func (s *Service) Terminate() {
	s.terminated = true
}

// Terminated reports whether a handler has requested termination.
func (s *Service) Terminated() bool {
	return s.terminated
}

// Dispatch invokes the handler installed for m's kind. Messages with no
// handler are dropped.
func (s *Service) Dispatch(m Message) {
	if h, ok := s.handlers[m.Kind()]; ok {
		h(m)
	}
}

// Run executes the operator lifecycle: register, initialize, signal
// readiness, dispatch until terminated, unregister. If ready is non-nil
// its counter is decremented once initialization has finished; the clock
// holds its first tick on that barrier.
func Run(op Operator, bus *Bus, ready *sync.WaitGroup) {
	s := NewService(op.Name(), bus)
	bus.Register(s.name)
	op.Initialize(s)
	if ready != nil {
		ready.Done()
	}
	for !s.terminated {
		m, err := bus.AwaitMessage(s.name)
		if err != nil {
			log.Printf("%s: mailbox closed, exiting", s.name)
			break
		}
		s.Dispatch(m)
	}
	bus.Unregister(s.name)
	log.Printf("%s: unregistered", s.name)
}
