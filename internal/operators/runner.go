package operators

import (
	"log"
	"sync"

	"github.com/gurion-robotics/slamsim/internal/msgbus"
)

// RunAll executes a full simulation: every sensor operator plus fusion
// is started on its own goroutine, the clock is held until all of them
// have signalled ready, and the call blocks until every participant has
// terminated and unregistered.
func RunAll(bus *msgbus.Bus, clock *Clock, participants []msgbus.Operator) {
	ready := &sync.WaitGroup{}
	ready.Add(len(participants))

	var done sync.WaitGroup
	for _, op := range participants {
		done.Add(1)
		go func(op msgbus.Operator) {
			defer done.Done()
			msgbus.Run(op, bus, ready)
		}(op)
	}

	// The first tick must not fire before every participant has
	// declared its subscriptions.
	ready.Wait()
	log.Printf("all operators ready, starting clock")

	done.Add(1)
	go func() {
		defer done.Done()
		msgbus.Run(clock, bus, nil)
	}()

	done.Wait()
}
