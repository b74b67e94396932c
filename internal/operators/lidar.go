package operators

import (
	"fmt"
	"log"

	"github.com/gurion-robotics/slamsim/internal/msgbus"
	"github.com/gurion-robotics/slamsim/internal/slam"
)

// Lidar matches camera detections against the shared scan database and
// emits tracked objects. A detection stamped at tick t can only be
// processed once tick t + frequency has been reached; earlier arrivals
// wait in the pending set.
type Lidar struct {
	id          int
	freq        int
	db          *slam.ScanDB
	status      slam.Status
	currentTick int
	pending     []slam.StampedDetection
	lastTracked []slam.TrackedObject
	stats       *slam.Statistics
}

// NewLidar creates a LiDAR worker over the shared, immutable scan
// database.
func NewLidar(id, frequency int, db *slam.ScanDB, stats *slam.Statistics) *Lidar {
	return &Lidar{
		id:     id,
		freq:   frequency,
		db:     db,
		status: slam.StatusUp,
		stats:  stats,
	}
}

// Name implements msgbus.Operator.
func (l *Lidar) Name() string { return fmt.Sprintf("lidar-%d", l.id) }

// Status returns the operator's lifecycle flag.
func (l *Lidar) Status() slam.Status { return l.status }

// LastTracked returns the most recent batch of tracked objects.
func (l *Lidar) LastTracked() []slam.TrackedObject { return l.lastTracked }

// Initialize subscribes to lifecycle broadcasts, the tick stream, and
// the camera detection events.
func (l *Lidar) Initialize(s *msgbus.Service) {
	log.Printf("%s: initialized (frequency=%d, %d scans)", s.Name(), l.freq, len(l.db.Scans()))

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
		l.onTick(s, m.(TickBroadcast).Tick)
	})

	s.SubscribeEvent(KindDetectObjects, func(m msgbus.Message) {
		l.onDetectObjects(s, m.(DetectObjectsEvent))
	})
}

func (l *Lidar) onTick(s *msgbus.Service, tick int) {
	if l.status != slam.StatusUp {
		return
	}

	l.currentTick = tick

	// Drain every pending detection whose latency window has closed.
	still := l.pending[:0]
	for _, d := range l.pending {
		if l.status == slam.StatusUp && d.Time+l.freq <= tick {
			l.track(s, d)
		} else {
			still = append(still, d)
		}
	}
	l.pending = still

	if l.status != slam.StatusUp {
		return
	}

	// The database is exhausted once the tick has passed the last scan
	// plus this worker's latency window; detections stamped inside the
	// window can still arrive until then.
	if tick > l.db.LastTime()+l.freq {
		log.Printf("%s: scan database exhausted", s.Name())
		l.status = slam.StatusDown
		s.SendBroadcast(TerminatedBroadcast{Sender: s.Name()})
	}
}

func (l *Lidar) onDetectObjects(s *msgbus.Service, e DetectObjectsEvent) {
	if l.status != slam.StatusUp {
		return
	}
	if e.Detection.Time+l.freq <= l.currentTick {
		l.track(s, e.Detection)
	} else {
		log.Printf("%s: detection at tick %d pending until tick %d", s.Name(), e.Detection.Time, e.Detection.Time+l.freq)
		l.pending = append(l.pending, e.Detection)
	}
}

// track matches one stamped detection against the scan database and
// emits the resulting batch.
func (l *Lidar) track(s *msgbus.Service, d slam.StampedDetection) {
	tracked := make([]slam.TrackedObject, 0, len(d.DetectedObjects))
	for _, obj := range d.DetectedObjects {
		scan, found, faulted := l.db.Match(obj.ID, d.Time)
		if faulted {
			log.Printf("%s: fault record in scan database", s.Name())
			s.SendBroadcast(CrashedBroadcast{
				Sender:     s.Name(),
				ErrorMaker: s.Name(),
				Message:    "LiDar Error",
			})
			l.status = slam.StatusError
			return
		}
		if !found {
			log.Printf("%s: no scan for object %s at tick %d", s.Name(), obj.ID, d.Time)
			continue
		}
		tracked = append(tracked, slam.TrackedObject{
			ID:          obj.ID,
			Time:        d.Time,
			Description: obj.Description,
			Coordinates: scan.Points(),
		})
	}

	l.lastTracked = tracked

	if len(tracked) > 0 {
		s.SendEvent(NewTrackedObjectsEvent(s.Name(), tracked))
		l.stats.AddTracked(len(tracked))
		log.Printf("%s: tracked %d objects from tick %d", s.Name(), len(tracked), d.Time)
	}
}
