// Package dataio reads the recorded sensor datasets and writes the run's
// output files. Everything here is glue around the core pipeline.
package dataio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gurion-robotics/slamsim/internal/slam"
)

// LoadCameraData reads the camera dataset: a map from camera key to that
// camera's time-ordered detection frames.
func LoadCameraData(path string) (map[string][]slam.StampedDetection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read camera data: %w", err)
	}
	frames := make(map[string][]slam.StampedDetection)
	if err := json.Unmarshal(data, &frames); err != nil {
		return nil, fmt.Errorf("failed to parse camera data: %w", err)
	}
	return frames, nil
}

// LoadLidarData reads the LiDAR dataset: the time-ordered scan records
// shared by every worker.
func LoadLidarData(path string) ([]slam.StampedCloudPoints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lidar data: %w", err)
	}
	var scans []slam.StampedCloudPoints
	if err := json.Unmarshal(data, &scans); err != nil {
		return nil, fmt.Errorf("failed to parse lidar data: %w", err)
	}
	return scans, nil
}

// LoadPoseData reads the time-ordered pose track.
func LoadPoseData(path string) ([]slam.Pose, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pose data: %w", err)
	}
	var poses []slam.Pose
	if err := json.Unmarshal(data, &poses); err != nil {
		return nil, fmt.Errorf("failed to parse pose data: %w", err)
	}
	return poses, nil
}
