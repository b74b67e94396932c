package slam

// ScanDB is the LiDAR scan database: every recorded return, ordered by
// time. It is loaded once at startup, immutable afterwards, and shared
// by reference between the LiDAR workers.
type ScanDB struct {
	scans []StampedCloudPoints
}

// NewScanDB wraps the time-ordered scan records.
func NewScanDB(scans []StampedCloudPoints) *ScanDB {
	return &ScanDB{scans: scans}
}

// Scans returns the full record list in database order.
func (db *ScanDB) Scans() []StampedCloudPoints {
	return db.scans
}

// LastTime returns the timestamp of the final record, or 0 for an empty
// database.
func (db *ScanDB) LastTime() int {
	if len(db.scans) == 0 {
		return 0
	}
	return db.scans[len(db.scans)-1].Time
}

// Match scans for the record with the given id and the largest
// time <= atTime. With two candidates at the same time the one
// encountered last in database order wins. If a record carrying the
// error sentinel appears within the window, faulted=true is returned
// and the match is abandoned.
func (db *ScanDB) Match(id string, atTime int) (match StampedCloudPoints, found, faulted bool) {
	for _, scan := range db.scans {
		if scan.Time > atTime {
			break
		}
		if scan.ID == ErrorID {
			return StampedCloudPoints{}, false, true
		}
		if scan.ID == id {
			match = scan
			found = true
		}
	}
	return match, found, false
}
