package geometry

import (
	"fmt"
	"math"
)

// Side identifies one of the two signing parties.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Label returns the display label for a slot, e.g. "A-1" for index 0.
func Label(side Side, index int) string {
	return fmt.Sprintf("%s-%d", side, index+1)
}

// Rect is a slot rectangle in stage (canvas) coordinates.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Scale returns the per-axis factors that map a signer's source canvas
// onto a slot rectangle.
func Scale(slot Rect, sourceW, sourceH float64) (sx, sy float64) {
	if sourceW <= 0 || sourceH <= 0 {
		return 0, 0
	}
	return float64(slot.W) / sourceW, float64(slot.H) / sourceH
}

// PenWidth scales a pen size using the larger axis factor so line
// thickness stays visually proportional under non-uniform scaling.
func PenWidth(size, sx, sy float64) float64 {
	return size * math.Max(sx, sy)
}

// MapPoint maps a point from the signer's source space into stage
// coordinates: slot origin plus the scaled point.
func MapPoint(slot Rect, px, py, sx, sy float64) (x, y float64) {
	return float64(slot.X) + px*sx, float64(slot.Y) + py*sy
}
