package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurion-robotics/slamsim/internal/dataio"
	"github.com/gurion-robotics/slamsim/internal/msgbus"
	"github.com/gurion-robotics/slamsim/internal/slam"
)

// captureSink records the output the fusion operator writes.
type captureSink struct {
	summary *dataio.Summary
	crash   *dataio.CrashSnapshot
}

func (c *captureSink) WriteSummary(s dataio.Summary) error {
	c.summary = &s
	return nil
}

func (c *captureSink) WriteCrash(s dataio.CrashSnapshot) error {
	c.crash = &s
	return nil
}

func TestFusion_BuildsLandmarkFromTrackedObject(t *testing.T) {
	bus := msgbus.New()
	sink := &captureSink{}
	stats := slam.NewStatistics()
	f := NewFusion(stats, sink)
	svc := startOperator(bus, f)

	svc.Dispatch(NewPoseEvent(1, slam.Pose{Time: 1, X: 0, Y: 0, Yaw: 0}))
	svc.Dispatch(NewTrackedObjectsEvent("lidar-1", []slam.TrackedObject{
		{ID: "A", Time: 1, Description: "tree", Coordinates: []slam.CloudPoint{{X: 1, Y: 1}}},
	}))

	require.Equal(t, 1, f.World().Len())
	assert.Equal(t, 1, stats.Landmarks())

	lm := f.World().Landmarks()[0]
	assert.Equal(t, "A", lm.ID)
	assert.Equal(t, "tree", lm.Description)
	assert.InDelta(t, 1.0, lm.Coordinates[0].X, 1e-9)
	assert.InDelta(t, 1.0, lm.Coordinates[0].Y, 1e-9)
}

func TestFusion_MergesRepeatSightings(t *testing.T) {
	bus := msgbus.New()
	stats := slam.NewStatistics()
	f := NewFusion(stats, &captureSink{})
	svc := startOperator(bus, f)

	svc.Dispatch(NewPoseEvent(1, slam.Pose{Time: 1}))
	svc.Dispatch(NewPoseEvent(3, slam.Pose{Time: 3}))
	svc.Dispatch(NewTrackedObjectsEvent("lidar-1", []slam.TrackedObject{
		{ID: "A", Time: 1, Coordinates: []slam.CloudPoint{{X: 1, Y: 1}}},
	}))
	svc.Dispatch(NewTrackedObjectsEvent("lidar-1", []slam.TrackedObject{
		{ID: "A", Time: 3, Coordinates: []slam.CloudPoint{{X: 3, Y: 3}}},
	}))

	// One landmark, counter bumped only on the first sighting.
	require.Equal(t, 1, f.World().Len())
	assert.Equal(t, 1, stats.Landmarks())

	lm := f.World().Landmarks()[0]
	assert.InDelta(t, 2.0, lm.Coordinates[0].X, 1e-9)
	assert.InDelta(t, 2.0, lm.Coordinates[0].Y, 1e-9)
}

func TestFusion_SkipsObjectWithoutPose(t *testing.T) {
	bus := msgbus.New()
	stats := slam.NewStatistics()
	f := NewFusion(stats, &captureSink{})
	svc := startOperator(bus, f)

	svc.Dispatch(NewTrackedObjectsEvent("lidar-1", []slam.TrackedObject{
		{ID: "A", Time: 5, Coordinates: []slam.CloudPoint{{X: 1, Y: 1}}},
	}))

	assert.Equal(t, 0, f.World().Len())
	assert.Equal(t, 0, stats.Landmarks())
}

func TestFusion_ResolvesEventPromises(t *testing.T) {
	bus := msgbus.New()
	f := NewFusion(slam.NewStatistics(), &captureSink{})
	svc := startOperator(bus, f)

	pose := NewPoseEvent(1, slam.Pose{Time: 1})
	p := bus.SendEvent(pose)
	require.NotNil(t, p)
	svc.Dispatch(pose)
	assert.True(t, p.IsResolved(), "pose promise must resolve")

	tracked := NewTrackedObjectsEvent("lidar-1", nil)
	pt := bus.SendEvent(tracked)
	require.NotNil(t, pt)
	svc.Dispatch(tracked)
	assert.True(t, pt.IsResolved(), "tracked promise must resolve")

	// The fusion mirror of a camera frame carries no completion signal.
	mirror := NewDetectObjectsForFusionEvent("camera-1", slam.StampedDetection{Time: 1})
	pm := bus.SendEvent(mirror)
	require.NotNil(t, pm)
	svc.Dispatch(mirror)
	assert.False(t, pm.IsResolved(), "camera mirror promise stays unresolved")
}

func TestFusion_WritesSummaryOnClockTermination(t *testing.T) {
	bus := msgbus.New()
	sink := &captureSink{}
	stats := slam.NewStatistics()
	stats.AddTick()
	stats.AddTick()
	stats.AddDetected(3)
	stats.AddTracked(2)

	f := NewFusion(stats, sink)
	svc := startOperator(bus, f)

	svc.Dispatch(NewPoseEvent(1, slam.Pose{Time: 1}))
	svc.Dispatch(NewTrackedObjectsEvent("lidar-1", []slam.TrackedObject{
		{ID: "A", Time: 1, Coordinates: []slam.CloudPoint{{X: 1, Y: 1}}},
	}))

	// Termination from a sensor is not the shutdown signal.
	svc.Dispatch(TerminatedBroadcast{Sender: "camera-1"})
	require.Nil(t, sink.summary)
	require.False(t, svc.Terminated())

	svc.Dispatch(TerminatedBroadcast{Sender: ClockName})
	require.NotNil(t, sink.summary)
	require.True(t, svc.Terminated())

	assert.Equal(t, 2, sink.summary.SystemRuntime)
	assert.Equal(t, 3, sink.summary.NumDetectedObjects)
	assert.Equal(t, 2, sink.summary.NumTrackedObjects)
	assert.Equal(t, 1, sink.summary.NumLandmarks)
	require.Len(t, sink.summary.LandMarks, 1)
	assert.Equal(t, "A", sink.summary.LandMarks[0].ID)
}

func TestFusion_WritesCrashSnapshot(t *testing.T) {
	bus := msgbus.New()
	sink := &captureSink{}
	stats := slam.NewStatistics()
	stats.AddDetected(1)
	stats.AddTracked(1)

	f := NewFusion(stats, sink)
	svc := startOperator(bus, f)

	frame := slam.StampedDetection{Time: 1, DetectedObjects: []slam.DetectedObject{{ID: "A", Description: "tree"}}}
	svc.Dispatch(TickBroadcast{Tick: 1})
	svc.Dispatch(NewPoseEvent(1, slam.Pose{Time: 1}))
	svc.Dispatch(NewDetectObjectsForFusionEvent("camera-1", frame))
	svc.Dispatch(NewTrackedObjectsEvent("lidar-1", []slam.TrackedObject{
		{ID: "A", Time: 1, Coordinates: []slam.CloudPoint{{X: 1, Y: 1}}},
	}))
	svc.Dispatch(TickBroadcast{Tick: 2})

	// A crash from a sensor is latched by the clock, not handled here.
	svc.Dispatch(CrashedBroadcast{Sender: "camera-1", ErrorMaker: "camera-1", Message: "cam fault"})
	require.Nil(t, sink.crash)

	svc.Dispatch(CrashedBroadcast{Sender: ClockName, ErrorMaker: "camera-1", Message: "cam fault"})
	require.NotNil(t, sink.crash)
	require.True(t, svc.Terminated())

	crash := sink.crash
	assert.Equal(t, "cam fault", crash.Error)
	assert.Equal(t, "camera-1", crash.FaultySensor)
	assert.Equal(t, 2, crash.SystemRuntime)
	assert.Equal(t, 1, crash.NumDetectedObjects)
	assert.Equal(t, 1, crash.NumTrackedObjects)
	assert.Equal(t, 1, crash.NumLandmarks)

	require.Contains(t, crash.LastCamerasFrame, "camera-1")
	assert.Equal(t, 1, crash.LastCamerasFrame["camera-1"].Time)
	require.Contains(t, crash.LastLiDarWorkerTrackersFrame, "lidar-1")
	require.Len(t, crash.Poses, 1)
	assert.Equal(t, 1, crash.Poses[0].Time)
}

func TestFusion_LastFrameIsLastWriterWins(t *testing.T) {
	bus := msgbus.New()
	sink := &captureSink{}
	f := NewFusion(slam.NewStatistics(), sink)
	svc := startOperator(bus, f)

	svc.Dispatch(NewDetectObjectsForFusionEvent("camera-1", slam.StampedDetection{Time: 1}))
	svc.Dispatch(NewDetectObjectsForFusionEvent("camera-1", slam.StampedDetection{Time: 4}))
	svc.Dispatch(CrashedBroadcast{Sender: ClockName, ErrorMaker: "camera-1", Message: "x"})

	require.NotNil(t, sink.crash)
	assert.Equal(t, 4, sink.crash.LastCamerasFrame["camera-1"].Time)
}
