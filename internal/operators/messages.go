// Package operators implements the simulation's participants: the clock,
// the camera and LiDAR sensors, the pose source, and the fusion map
// builder. Each runs as a msgbus service on its own goroutine.
package operators

import (
	"github.com/gurion-robotics/slamsim/internal/msgbus"
	"github.com/gurion-robotics/slamsim/internal/slam"
)

// The closed message alphabet. Broadcasts fan out; events go to one
// subscriber and carry a promise.
const (
	KindTick                   msgbus.Kind = "tick"
	KindTerminated             msgbus.Kind = "terminated"
	KindCrashed                msgbus.Kind = "crashed"
	KindDetectObjects          msgbus.Kind = "detect-objects"
	KindDetectObjectsForFusion msgbus.Kind = "detect-objects-fusion"
	KindTrackedObjects         msgbus.Kind = "tracked-objects"
	KindPose                   msgbus.Kind = "pose"
)

// TickBroadcast announces one clock step. Ticks are a prefix of the
// naturals starting at 1, in order, without duplicates.
type TickBroadcast struct {
	Tick int
}

func (TickBroadcast) Kind() msgbus.Kind { return KindTick }

// TerminatedBroadcast announces that the sender has finished, either
// from data exhaustion (a sensor) or as the system-wide shutdown signal
// (the clock).
type TerminatedBroadcast struct {
	Sender string
}

func (TerminatedBroadcast) Kind() msgbus.Kind { return KindTerminated }

// CrashedBroadcast announces a sensor fault. ErrorMaker names the
// operator that hit the fault; when the clock relays the crash
// system-wide it keeps the original fault info and sets itself as
// Sender.
type CrashedBroadcast struct {
	Sender     string
	ErrorMaker string
	Message    string
}

func (CrashedBroadcast) Kind() msgbus.Kind { return KindCrashed }

// DetectObjectsEvent carries a camera frame to one LiDAR worker once the
// frame's availability tick has been reached.
type DetectObjectsEvent struct {
	msgbus.EventTag
	Sender    string
	Detection slam.StampedDetection
}

func (DetectObjectsEvent) Kind() msgbus.Kind { return KindDetectObjects }

// NewDetectObjectsEvent stamps a fresh event identity.
func NewDetectObjectsEvent(sender string, d slam.StampedDetection) DetectObjectsEvent {
	return DetectObjectsEvent{EventTag: msgbus.NewEventTag(), Sender: sender, Detection: d}
}

// DetectObjectsForFusionEvent mirrors a camera frame to the fusion
// operator, which stores it solely for the crash snapshot.
type DetectObjectsForFusionEvent struct {
	msgbus.EventTag
	Sender    string
	Detection slam.StampedDetection
}

func (DetectObjectsForFusionEvent) Kind() msgbus.Kind { return KindDetectObjectsForFusion }

// NewDetectObjectsForFusionEvent stamps a fresh event identity.
func NewDetectObjectsForFusionEvent(sender string, d slam.StampedDetection) DetectObjectsForFusionEvent {
	return DetectObjectsForFusionEvent{EventTag: msgbus.NewEventTag(), Sender: sender, Detection: d}
}

// TrackedObjectsEvent carries one LiDAR worker's batch of tracked
// objects to the fusion operator.
type TrackedObjectsEvent struct {
	msgbus.EventTag
	Sender  string
	Tracked []slam.TrackedObject
}

func (TrackedObjectsEvent) Kind() msgbus.Kind { return KindTrackedObjects }

// NewTrackedObjectsEvent stamps a fresh event identity.
func NewTrackedObjectsEvent(sender string, tracked []slam.TrackedObject) TrackedObjectsEvent {
	return TrackedObjectsEvent{EventTag: msgbus.NewEventTag(), Sender: sender, Tracked: tracked}
}

// PoseEvent carries the robot pose recorded for a tick.
type PoseEvent struct {
	msgbus.EventTag
	Time int
	Pose slam.Pose
}

func (PoseEvent) Kind() msgbus.Kind { return KindPose }

// NewPoseEvent stamps a fresh event identity.
func NewPoseEvent(time int, p slam.Pose) PoseEvent {
	return PoseEvent{EventTag: msgbus.NewEventTag(), Time: time, Pose: p}
}
