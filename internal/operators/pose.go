package operators

import (
	"log"

	"github.com/gurion-robotics/slamsim/internal/msgbus"
	"github.com/gurion-robotics/slamsim/internal/slam"
)

// PoseName is the pose operator's bus name.
const PoseName = "pose"

// PoseSource replays the recorded pose track, emitting the pose whose
// timestamp matches each tick. Poses for future ticks wait; poses the
// clock has already passed are skipped.
type PoseSource struct {
	poses  []slam.Pose
	cursor int
	status slam.Status
}

// NewPoseSource creates the pose operator over its time-ordered poses.
func NewPoseSource(poses []slam.Pose) *PoseSource {
	return &PoseSource{poses: poses, status: slam.StatusUp}
}

// Name implements msgbus.Operator.
func (p *PoseSource) Name() string { return PoseName }

// Status returns the operator's lifecycle flag.
func (p *PoseSource) Status() slam.Status { return p.status }

// Initialize subscribes to the lifecycle broadcasts and the tick stream.
func (p *PoseSource) Initialize(s *msgbus.Service) {
	log.Printf("%s: initialized (%d poses)", s.Name(), len(p.poses))

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
		p.onTick(s, m.(TickBroadcast).Tick)
	})
}

func (p *PoseSource) onTick(s *msgbus.Service, tick int) {
	if p.status != slam.StatusUp {
		return
	}

	if p.cursor >= len(p.poses) {
		log.Printf("%s: pose track exhausted", s.Name())
		p.status = slam.StatusDown
		s.SendBroadcast(TerminatedBroadcast{Sender: s.Name()})
		return
	}

	for p.cursor < len(p.poses) {
		pose := p.poses[p.cursor]
		if pose.Time == tick {
			s.SendEvent(NewPoseEvent(tick, pose))
			log.Printf("%s: pose for tick %d sent (x=%.2f y=%.2f yaw=%.1f)", s.Name(), tick, pose.X, pose.Y, pose.Yaw)
			p.cursor++
			return
		}
		if pose.Time > tick {
			return
		}
		p.cursor++
	}
}
