package overlay

// Transform maps detector (preview) coordinates to canvas coordinates.
type Transform struct {
	WidthScale  float64
	HeightScale float64
	CanvasWidth float64
	Mirror      bool
}

// IdentityTransform leaves coordinates unchanged.
var IdentityTransform = Transform{WidthScale: 1, HeightScale: 1}

// ScaleX scales a horizontal distance.
func (t Transform) ScaleX(horizontal float64) float64 {
	return horizontal * t.WidthScale
}

// ScaleY scales a vertical distance.
func (t Transform) ScaleY(vertical float64) float64 {
	return vertical * t.HeightScale
}

// TranslateX maps an x coordinate, mirroring it for front-facing cameras.
func (t Transform) TranslateX(x float64) float64 {
	if t.Mirror {
		return t.CanvasWidth - t.ScaleX(x)
	}
	return t.ScaleX(x)
}

// TranslateY maps a y coordinate.
func (t Transform) TranslateY(y float64) float64 {
	return t.ScaleY(y)
}
