package dataio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gurion-robotics/slamsim/internal/slam"
)

// Output file names, written to the working directory.
const (
	SummaryFileName = "output_file.json"
	CrashFileName   = "error_output.json"
)

// Summary is the normal-termination output.
type Summary struct {
	SystemRuntime      int             `json:"systemRuntime"`
	NumDetectedObjects int             `json:"numDetectedObjects"`
	NumTrackedObjects  int             `json:"numTrackedObjects"`
	NumLandmarks       int             `json:"numLandmarks"`
	LandMarks          []slam.Landmark `json:"landMarks"`
}

// CrashSnapshot is the crash-path output: the fault plus every
// operator's last known frame and the full pose history.
type CrashSnapshot struct {
	Error                        string                             `json:"error"`
	FaultySensor                 string                             `json:"faultySensor"`
	LastCamerasFrame             map[string]slam.StampedDetection   `json:"lastCamerasFrame"`
	LastLiDarWorkerTrackersFrame map[string][]slam.TrackedObject    `json:"lastLiDarWorkerTrackersFrame"`
	Poses                        []slam.Pose                        `json:"poses"`
	SystemRuntime                int                                `json:"systemRuntime"`
	NumDetectedObjects           int                                `json:"numDetectedObjects"`
	NumTrackedObjects            int                                `json:"numTrackedObjects"`
	NumLandmarks                 int                                `json:"numLandmarks"`
	Landmarks                    []slam.Landmark                    `json:"landmarks"`
}

// OutputWriter writes the run outputs as pretty-printed JSON under Dir.
// An empty Dir means the working directory.
type OutputWriter struct {
	Dir string
}

// WriteSummary writes output_file.json.
func (w OutputWriter) WriteSummary(s Summary) error {
	return w.writeJSON(SummaryFileName, s)
}

// WriteCrash writes error_output.json.
func (w OutputWriter) WriteCrash(c CrashSnapshot) error {
	return w.writeJSON(CrashFileName, c)
}

func (w OutputWriter) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
