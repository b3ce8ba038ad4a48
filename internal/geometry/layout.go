package geometry

import "math"

// Layout constants shared by the server default layout and the admin
// preview. Both must produce identical rectangles for the same input.
const (
	layoutPad    = 20 // outer padding
	layoutGap    = 16 // gap between slots in a row
	layoutRowGap = 20 // gap between row A and row B
	layoutBottom = 20 // reserved bottom margin
)

// AutoLayout computes slot rectangles for countA slots on side A and
// countB on side B on a stageW x stageH canvas. Side A is the upper
// row, side B the lower. Row height is clamped between 15% and 25% of
// the stage height (never below 120px). A count of zero yields an
// empty row.
func AutoLayout(countA, countB, stageW, stageH int) (a, b []Rect) {
	minHeight := int(math.Max(120, math.Round(float64(stageH)*0.15)))
	maxHeight := int(math.Round(float64(stageH) * 0.25))

	available := stageH - layoutBottom - layoutRowGap
	rowHeight := available / 2
	if rowHeight < minHeight {
		rowHeight = minHeight
	}
	if rowHeight > maxHeight {
		rowHeight = maxHeight
	}

	yA := int(math.Round(float64(stageH-rowHeight*2-layoutRowGap) / 2))
	yB := yA + rowHeight + layoutRowGap

	return layoutRow(countA, yA, rowHeight, stageW), layoutRow(countB, yB, rowHeight, stageW)
}

func layoutRow(count, y, rowHeight, stageW int) []Rect {
	if count <= 0 {
		return []Rect{}
	}

	totalGap := (count - 1) * layoutGap
	width := (stageW - layoutPad*2 - totalGap) / count

	row := make([]Rect, count)
	for i := range row {
		row[i] = Rect{
			X: layoutPad + i*(width+layoutGap),
			Y: y,
			W: width,
			H: rowHeight,
		}
	}
	return row
}
