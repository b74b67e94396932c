package operators

import (
	"testing"

	"github.com/gurion-robotics/slamsim/internal/msgbus"
)

// sink is a registered bus participant used by tests to observe what an
// operator under test emits. Operators are driven synchronously via
// Service.Dispatch, so anything sent lands in the sink's mailbox before
// the test reads it.
type sink struct {
	t    *testing.T
	bus  *msgbus.Bus
	name string
}

func newSink(t *testing.T, bus *msgbus.Bus, kinds ...msgbus.Kind) *sink {
	s := &sink{t: t, bus: bus, name: "sink"}
	bus.Register(s.name)
	for _, k := range kinds {
		bus.SubscribeEvent(k, s.name)
	}
	return s
}

func (s *sink) subscribeBroadcast(kinds ...msgbus.Kind) *sink {
	for _, k := range kinds {
		s.bus.SubscribeBroadcast(k, s.name)
	}
	return s
}

// next pops one queued message; fails the test if none is queued.
func (s *sink) next() msgbus.Message {
	s.t.Helper()
	if s.bus.MailboxLen(s.name) == 0 {
		s.t.Fatal("sink: no message queued")
	}
	m, err := s.bus.AwaitMessage(s.name)
	if err != nil {
		s.t.Fatalf("sink: %v", err)
	}
	return m
}

func (s *sink) empty() bool {
	return s.bus.MailboxLen(s.name) == 0
}

// startOperator registers the operator and runs its initialization,
// returning the service for synchronous dispatch.
func startOperator(bus *msgbus.Bus, op msgbus.Operator) *msgbus.Service {
	svc := msgbus.NewService(op.Name(), bus)
	bus.Register(op.Name())
	op.Initialize(svc)
	return svc
}
