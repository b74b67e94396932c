// Package slam holds the data model and map-building core of the
// simulation: sensor observations, the robot's pose history, and the
// world-frame landmark map refined from repeated sightings.
package slam

// ErrorID is the sentinel object id that marks a faulty sensor reading.
// A camera frame or LiDAR scan carrying it triggers the crash path.
const ErrorID = "ERROR"

// CloudPoint is a 2-D point, in the sensor frame before transformation
// and in the world frame after.
type CloudPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DetectedObject is a single camera-level observation.
type DetectedObject struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// StampedDetection groups the objects a camera saw at one tick.
// Immutable after creation.
type StampedDetection struct {
	Time            int              `json:"time"`
	DetectedObjects []DetectedObject `json:"detectedObjects"`
}

// StampedCloudPoints is one raw LiDAR return: the point cloud recorded
// for an object id at a tick. Points are kept as the raw [x, y] pairs of
// the dataset and converted on demand.
type StampedCloudPoints struct {
	ID          string      `json:"id"`
	Time        int         `json:"time"`
	CloudPoints [][]float64 `json:"cloudPoints"`
}

// Points converts the raw pairs to CloudPoints. Pairs shorter than two
// values are skipped.
func (s StampedCloudPoints) Points() []CloudPoint {
	pts := make([]CloudPoint, 0, len(s.CloudPoints))
	for _, p := range s.CloudPoints {
		if len(p) < 2 {
			continue
		}
		pts = append(pts, CloudPoint{X: p[0], Y: p[1]})
	}
	return pts
}

// TrackedObject is a camera detection enriched with its matched LiDAR
// point cloud, still in the sensor frame.
type TrackedObject struct {
	ID          string       `json:"id"`
	Time        int          `json:"time"`
	Description string       `json:"description"`
	Coordinates []CloudPoint `json:"coordinates"`
}

// Pose is the robot's position and heading at a tick. Yaw is in
// degrees.
type Pose struct {
	Time int     `json:"time"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Yaw  float64 `json:"yaw"`
}

// Landmark is a persistent map entity keyed by object id, with
// world-frame coordinates refined by averaging on each later sighting.
type Landmark struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Coordinates []CloudPoint `json:"coordinates"`
}

// Status is an operator's lifecycle flag.
type Status string

const (
	StatusUp    Status = "UP"
	StatusDown  Status = "DOWN"
	StatusError Status = "ERROR"
)
