package operators

import (
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gurion-robotics/slamsim/internal/msgbus"
	"github.com/gurion-robotics/slamsim/internal/slam"
)

// ClockName is the clock operator's bus name. Sensors terminate when the
// shutdown broadcast carries this sender.
const ClockName = "clock"

// Clock drives the simulation: it broadcasts one TickBroadcast per step
// until the duration is reached, every sensor has exhausted its data, or
// a sensor crash has been latched. On exit it broadcasts the system-wide
// termination or crash signal.
type Clock struct {
	tickPeriod time.Duration
	duration   int
	current    int
	sensors    *atomic.Int32
	stats      *slam.Statistics

	mu         sync.Mutex
	crashed    bool
	errorMaker string
	errorMsg   string
}

// NewClock creates the clock. sensors must already hold the number of
// active sensor operators (cameras + lidars + pose).
func NewClock(tickPeriod time.Duration, duration int, sensors *atomic.Int32, stats *slam.Statistics) *Clock {
	return &Clock{
		tickPeriod: tickPeriod,
		duration:   duration,
		sensors:    sensors,
		stats:      stats,
	}
}

// Name implements msgbus.Operator.
func (c *Clock) Name() string { return ClockName }

// CurrentTick returns the number of the last tick broadcast.
func (c *Clock) CurrentTick() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Initialize subscribes to the lifecycle broadcasts and starts the timer
// task. The runner only starts this service once every other operator
// has signalled ready, so the first tick never races initialization.
func (c *Clock) Initialize(s *msgbus.Service) {
	log.Printf("%s: initialized (period=%s duration=%d ticks)", s.Name(), c.tickPeriod, c.duration)

	s.SubscribeBroadcast(KindTerminated, func(m msgbus.Message) {
		b := m.(TerminatedBroadcast)
		if b.Sender == ClockName {
			log.Printf("%s: shutting down", s.Name())
			s.Terminate()
			return
		}
		if isSensorName(b.Sender) {
			remaining := c.sensors.Add(-1)
			log.Printf("%s: sensor %s terminated, %d remaining", s.Name(), b.Sender, remaining)
		}
	})

	s.SubscribeBroadcast(KindCrashed, func(m msgbus.Message) {
		b := m.(CrashedBroadcast)
		if b.Sender == ClockName {
			log.Printf("%s: shutting down after crash", s.Name())
			s.Terminate()
			return
		}
		log.Printf("%s: crash latched from %s: %s", s.Name(), b.ErrorMaker, b.Message)
		c.mu.Lock()
		c.crashed = true
		c.errorMaker = b.ErrorMaker
		c.errorMsg = b.Message
		c.mu.Unlock()
	})

	go c.runTimer(s)
}

func (c *Clock) runTimer(s *msgbus.Service) {
	for {
		c.mu.Lock()
		stop := c.current >= c.duration || c.crashed
		c.mu.Unlock()
		if stop || c.sensors.Load() <= 0 {
			break
		}

		c.mu.Lock()
		c.current++
		tick := c.current
		c.mu.Unlock()

		log.Printf("%s: tick %d", s.Name(), tick)
		s.SendBroadcast(TickBroadcast{Tick: tick})
		c.stats.AddTick()

		time.Sleep(c.tickPeriod)
	}

	c.mu.Lock()
	crashed, maker, msg := c.crashed, c.errorMaker, c.errorMsg
	c.mu.Unlock()

	if crashed {
		log.Printf("%s: terminating after crash in %s", s.Name(), maker)
		s.SendBroadcast(CrashedBroadcast{Sender: ClockName, ErrorMaker: maker, Message: msg})
	} else {
		log.Printf("%s: terminating normally", s.Name())
		s.SendBroadcast(TerminatedBroadcast{Sender: ClockName})
	}
}

// isSensorName reports whether a bus name belongs to a sensor operator
// (camera, lidar, or pose) as opposed to the clock or fusion.
func isSensorName(name string) bool {
	return strings.HasPrefix(name, "camera") ||
		strings.HasPrefix(name, "lidar") ||
		strings.HasPrefix(name, "pose")
}
