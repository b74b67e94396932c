package operators

import (
	"fmt"
	"log"

	"github.com/gurion-robotics/slamsim/internal/msgbus"
	"github.com/gurion-robotics/slamsim/internal/slam"
)

// Camera replays a recorded detection stream. A frame detected at tick t
// becomes available at t + frequency, modelling sensor latency; on
// availability the frame is emitted both to the LiDAR workers and to the
// fusion operator.
type Camera struct {
	id     int
	freq   int
	frames []slam.StampedDetection
	cursor int
	status slam.Status
	stats  *slam.Statistics
}

// NewCamera creates a camera operator over its time-ordered frames.
func NewCamera(id, frequency int, frames []slam.StampedDetection, stats *slam.Statistics) *Camera {
	return &Camera{
		id:     id,
		freq:   frequency,
		frames: frames,
		status: slam.StatusUp,
		stats:  stats,
	}
}

// Name implements msgbus.Operator.
func (c *Camera) Name() string { return fmt.Sprintf("camera-%d", c.id) }

// Status returns the operator's lifecycle flag.
func (c *Camera) Status() slam.Status { return c.status }

// Initialize subscribes to the lifecycle broadcasts and the tick stream.
func (c *Camera) Initialize(s *msgbus.Service) {
	log.Printf("%s: initialized (frequency=%d, %d frames)", s.Name(), c.freq, len(c.frames))

	s.SubscribeBroadcast(KindTerminated, func(m msgbus.Message) {
		if m.(TerminatedBroadcast).Sender == ClockName {
			log.Printf("%s: shutting down", s.Name())
			s.Terminate()
		}
	})

	s.SubscribeBroadcast(KindCrashed, func(m msgbus.Message) {
		if m.(CrashedBroadcast).Sender == ClockName {
			log.Printf("%s: shutting down after crash", s.Name())
			s.Terminate()
		}
	})

	s.SubscribeBroadcast(KindTick, func(m msgbus.Message) {
		c.onTick(s, m.(TickBroadcast).Tick)
	})
}

func (c *Camera) onTick(s *msgbus.Service, tick int) {
	if c.status != slam.StatusUp {
		return
	}

	if c.cursor >= len(c.frames) {
		log.Printf("%s: frames exhausted", s.Name())
		c.status = slam.StatusDown
		s.SendBroadcast(TerminatedBroadcast{Sender: s.Name()})
		return
	}

	for c.cursor < len(c.frames) {
		frame := c.frames[c.cursor]

		// Faults surface at detection time, before the frame would
		// ever become available.
		if frame.Time == tick {
			for _, obj := range frame.DetectedObjects {
				if obj.ID == slam.ErrorID {
					log.Printf("%s: fault in frame at tick %d: %s", s.Name(), tick, obj.Description)
					s.SendBroadcast(CrashedBroadcast{
						Sender:     s.Name(),
						ErrorMaker: s.Name(),
						Message:    obj.Description,
					})
					c.cursor++
					c.status = slam.StatusError
					return
				}
			}
		}

		available := frame.Time + c.freq
		switch {
		case available == tick:
			log.Printf("%s: frame from tick %d available, %d objects", s.Name(), frame.Time, len(frame.DetectedObjects))
			s.SendEvent(NewDetectObjectsEvent(s.Name(), frame))
			s.SendEvent(NewDetectObjectsForFusionEvent(s.Name(), frame))
			c.stats.AddDetected(len(frame.DetectedObjects))
			c.cursor++
		case available > tick:
			return
		default:
			// Stale frame whose availability tick has already passed.
			c.cursor++
		}
	}
}
