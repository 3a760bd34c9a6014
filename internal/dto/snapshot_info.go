package dto

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SnapshotInfo represents metadata about a stored snapshot.
type SnapshotInfo struct {
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	TimeOfDay time.Time `json:"timeOfDay"`
	Camera    string    `json:"camera"`
	Faces     []int     `json:"faces"`
}

// MarshalJSON customizes JSON output for SnapshotInfo to format date and time-of-day.
func (p SnapshotInfo) MarshalJSON() ([]byte, error) {
	type Alias SnapshotInfo
	return json.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      p.Date.Format("02-01-2006"),
		TimeOfDay: p.TimeOfDay.Format("15:04"),
		Alias:     (Alias)(p),
	})
}
