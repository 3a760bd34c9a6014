// SnapshotsData is a paginated response payload for the snapshot gallery.
package dto

type SnapshotsData struct {
	Snapshots   []SnapshotInfo `json:"snapshots"`
	ImagesDir   string         `json:"imagesDir"`
	Size        int64          `json:"size"`
	MaxSize     int64          `json:"maxSize"`
	Length      int            `json:"length"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Limit       int            `json:"pageSize"`
}
