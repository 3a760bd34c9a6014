// SnapshotFilters describe user-provided filters to narrow the snapshot list.
package dto

import "time"

type SnapshotFilters struct {
	Camera     string
	FaceID     *int
	DateAfter  time.Time
	DateBefore time.Time
	Limit      int
	Offset     int
}
