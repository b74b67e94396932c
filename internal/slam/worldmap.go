package slam

// WorldMap is the fusion state: the id-keyed landmark map and the
// ordered pose history. It is owned exclusively by the fusion operator's
// goroutine and needs no locking.
type WorldMap struct {
	landmarks []*Landmark
	byID      map[string]*Landmark
	poses     []Pose
}

// NewWorldMap returns an empty map.
func NewWorldMap() *WorldMap {
	return &WorldMap{byID: make(map[string]*Landmark)}
}

// AddPose appends p to the pose history.
func (m *WorldMap) AddPose(p Pose) {
	m.poses = append(m.poses, p)
}

// PoseAt returns the pose recorded for the given tick.
func (m *WorldMap) PoseAt(time int) (Pose, bool) {
	for _, p := range m.poses {
		if p.Time == time {
			return p, true
		}
	}
	return Pose{}, false
}

// Poses returns the pose history in arrival order.
func (m *WorldMap) Poses() []Pose {
	out := make([]Pose, len(m.poses))
	copy(out, m.poses)
	return out
}

// Integrate folds one tracked object into the map. The object's points
// are transformed with the pose whose time matches the observation; a
// first sighting inserts a landmark, a repeat sighting refines the
// existing one by averaging. Returns created=true when a new landmark
// was inserted and ok=false when no matching pose exists (the object is
// skipped entirely).
func (m *WorldMap) Integrate(o TrackedObject) (created, ok bool) {
	pose, ok := m.PoseAt(o.Time)
	if !ok {
		return false, false
	}

	world := TransformToWorld(o.Coordinates, pose)

	if lm, exists := m.byID[o.ID]; exists {
		lm.Coordinates = AveragePoints(lm.Coordinates, world)
		return false, true
	}

	lm := &Landmark{ID: o.ID, Description: o.Description, Coordinates: world}
	m.landmarks = append(m.landmarks, lm)
	m.byID[o.ID] = lm
	return true, true
}

// Landmarks returns the landmarks in insertion order.
func (m *WorldMap) Landmarks() []Landmark {
	out := make([]Landmark, len(m.landmarks))
	for i, lm := range m.landmarks {
		out[i] = *lm
	}
	return out
}

// Len returns the number of landmarks.
func (m *WorldMap) Len() int { return len(m.landmarks) }
