package operators

import (
	"log"

	"github.com/gurion-robotics/slamsim/internal/dataio"
	"github.com/gurion-robotics/slamsim/internal/msgbus"
	"github.com/gurion-robotics/slamsim/internal/slam"
)

// FusionName is the fusion operator's bus name.
const FusionName = "fusion"

// OutputSink receives the run's final output. Satisfied by
// dataio.OutputWriter.
type OutputSink interface {
	WriteSummary(dataio.Summary) error
	WriteCrash(dataio.CrashSnapshot) error
}

// Fusion builds the global landmark map from tracked-object and pose
// events. It is the sole owner of the world map and pose history, and
// the canonical writer of both output files.
type Fusion struct {
	world       *slam.WorldMap
	stats       *slam.Statistics
	out         OutputSink
	currentTick int

	// Last frames per sender, kept only so a crash snapshot means
	// something.
	lastCameraFrame map[string]slam.StampedDetection
	lastLidarFrame  map[string][]slam.TrackedObject
}

// NewFusion creates the fusion operator.
func NewFusion(stats *slam.Statistics, out OutputSink) *Fusion {
	return &Fusion{
		world:           slam.NewWorldMap(),
		stats:           stats,
		out:             out,
		lastCameraFrame: make(map[string]slam.StampedDetection),
		lastLidarFrame:  make(map[string][]slam.TrackedObject),
	}
}

// Name implements msgbus.Operator.
func (f *Fusion) Name() string { return FusionName }

// World exposes the map for inspection after the run.
func (f *Fusion) World() *slam.WorldMap { return f.world }

// Initialize subscribes to every message kind fusion consumes.
func (f *Fusion) Initialize(s *msgbus.Service) {
	log.Printf("%s: initialized", s.Name())

	s.SubscribeBroadcast(KindTick, func(m msgbus.Message) {
		f.currentTick = m.(TickBroadcast).Tick
	})

	s.SubscribeEvent(KindPose, func(m msgbus.Message) {
		e := m.(PoseEvent)
		f.world.AddPose(e.Pose)
		log.Printf("%s: pose recorded for tick %d", s.Name(), e.Pose.Time)
		s.Complete(e, true)
	})

	s.SubscribeEvent(KindDetectObjectsForFusion, func(m msgbus.Message) {
		e := m.(DetectObjectsForFusionEvent)
		f.lastCameraFrame[e.Sender] = e.Detection
	})

	s.SubscribeEvent(KindTrackedObjects, func(m msgbus.Message) {
		e := m.(TrackedObjectsEvent)
		f.lastLidarFrame[e.Sender] = e.Tracked
		for _, obj := range e.Tracked {
			created, ok := f.world.Integrate(obj)
			if !ok {
				log.Printf("%s: no pose for object %s at tick %d, skipping", s.Name(), obj.ID, obj.Time)
				continue
			}
			if created {
				f.stats.AddLandmark()
				log.Printf("%s: new landmark %s", s.Name(), obj.ID)
			} else {
				log.Printf("%s: refined landmark %s", s.Name(), obj.ID)
			}
		}
		s.Complete(e, true)
	})

	s.SubscribeBroadcast(KindTerminated, func(m msgbus.Message) {
		if m.(TerminatedBroadcast).Sender != ClockName {
			return
		}
		f.writeSummary(s)
		s.Terminate()
	})

	s.SubscribeBroadcast(KindCrashed, func(m msgbus.Message) {
		b := m.(CrashedBroadcast)
		if b.Sender != ClockName {
			return
		}
		f.writeCrash(s, b)
		s.Terminate()
	})
}

func (f *Fusion) writeSummary(s *msgbus.Service) {
	summary := dataio.Summary{
		SystemRuntime:      f.stats.Ticks(),
		NumDetectedObjects: f.stats.Detected(),
		NumTrackedObjects:  f.stats.Tracked(),
		NumLandmarks:       f.stats.Landmarks(),
		LandMarks:          f.world.Landmarks(),
	}
	if err := f.out.WriteSummary(summary); err != nil {
		log.Printf("%s: %v", s.Name(), err)
	}

	log.Printf("%s: run complete: ticks=%d detected=%d tracked=%d landmarks=%d",
		s.Name(), summary.SystemRuntime, summary.NumDetectedObjects,
		summary.NumTrackedObjects, summary.NumLandmarks)
	for _, lm := range summary.LandMarks {
		log.Printf("%s: landmark %s (%s): %d points", s.Name(), lm.ID, lm.Description, len(lm.Coordinates))
	}
}

func (f *Fusion) writeCrash(s *msgbus.Service, b CrashedBroadcast) {
	landmarks := f.world.Landmarks()
	snapshot := dataio.CrashSnapshot{
		Error:                        b.Message,
		FaultySensor:                 b.ErrorMaker,
		LastCamerasFrame:             f.lastCameraFrame,
		LastLiDarWorkerTrackersFrame: f.lastLidarFrame,
		Poses:                        f.world.Poses(),
		SystemRuntime:                f.currentTick,
		NumDetectedObjects:           f.stats.Detected(),
		NumTrackedObjects:            f.stats.Tracked(),
		NumLandmarks:                 len(landmarks),
		Landmarks:                    landmarks,
	}
	if err := f.out.WriteCrash(snapshot); err != nil {
		log.Printf("%s: %v", s.Name(), err)
	}

	log.Printf("%s: crash in %s at tick %d: %s", s.Name(), b.ErrorMaker, f.currentTick, b.Message)
	log.Printf("%s: statistics: detected=%d tracked=%d landmarks=%d",
		s.Name(), snapshot.NumDetectedObjects, snapshot.NumTrackedObjects, snapshot.NumLandmarks)
	for sender, frame := range f.lastCameraFrame {
		log.Printf("%s: last frame from %s: tick %d, %d objects", s.Name(), sender, frame.Time, len(frame.DetectedObjects))
	}
	for sender, tracked := range f.lastLidarFrame {
		log.Printf("%s: last batch from %s: %d tracked objects", s.Name(), sender, len(tracked))
	}
	for _, p := range snapshot.Poses {
		log.Printf("%s: pose t=%d x=%.2f y=%.2f yaw=%.1f", s.Name(), p.Time, p.X, p.Y, p.Yaw)
	}
	for _, lm := range landmarks {
		log.Printf("%s: landmark %s (%s): %d points", s.Name(), lm.ID, lm.Description, len(lm.Coordinates))
	}
}
