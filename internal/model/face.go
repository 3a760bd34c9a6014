package model

// Point is a 2D location in detector (preview) space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Face is a single detection result for one face on one frame.
// Any point may be nil when the detector could not locate it.
type Face struct {
	ID          int     `json:"id"`
	Position    *Point  `json:"position"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	LeftEye     *Point  `json:"leftEye"`
	RightEye    *Point  `json:"rightEye"`
	NoseBase    *Point  `json:"noseBase"`
	MouthLeft   *Point  `json:"mouthLeft"`
	MouthRight  *Point  `json:"mouthRight"`
	MouthBottom *Point  `json:"mouthBottom"`
}

// Complete reports whether the position and all six landmarks are present.
func (f *Face) Complete() bool {
	return f.Position != nil &&
		f.LeftEye != nil &&
		f.RightEye != nil &&
		f.NoseBase != nil &&
		f.MouthLeft != nil &&
		f.MouthRight != nil &&
		f.MouthBottom != nil
}
