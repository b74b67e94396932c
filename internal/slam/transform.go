package slam

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// TransformToWorld rotates the sensor-frame points by the pose's yaw
// about the origin and translates them by the pose position. Yaw is in
// degrees; the returned slice is world-frame.
func TransformToWorld(points []CloudPoint, pose Pose) []CloudPoint {
	yawRad := pose.Yaw * math.Pi / 180.0
	origin := r2.Vec{X: pose.X, Y: pose.Y}

	world := make([]CloudPoint, len(points))
	for i, p := range points {
		v := r2.Add(r2.Rotate(r2.Vec{X: p.X, Y: p.Y}, yawRad, r2.Vec{}), origin)
		world[i] = CloudPoint{X: v.X, Y: v.Y}
	}
	return world
}

// AveragePoints merges two coordinate sequences element-wise. The
// averaged prefix has length min(|a|, |b|); the remainder of the longer
// input is appended verbatim, new points first.
func AveragePoints(existing, incoming []CloudPoint) []CloudPoint {
	n := len(existing)
	if len(incoming) < n {
		n = len(incoming)
	}

	merged := make([]CloudPoint, 0, max(len(existing), len(incoming)))
	for i := 0; i < n; i++ {
		merged = append(merged, CloudPoint{
			X: (existing[i].X + incoming[i].X) / 2,
			Y: (existing[i].Y + incoming[i].Y) / 2,
		})
	}
	merged = append(merged, incoming[n:]...)
	merged = append(merged, existing[n:]...)
	return merged
}
