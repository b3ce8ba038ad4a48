package geometry

import (
	"math"
	"reflect"
	"testing"
)

func TestAutoLayoutDeterministic(t *testing.T) {
	a1, b1 := AutoLayout(3, 2, 1000, 1000)
	a2, b2 := AutoLayout(3, 2, 1000, 1000)

	if !reflect.DeepEqual(a1, a2) || !reflect.DeepEqual(b1, b2) {
		t.Fatalf("layout not deterministic: %v/%v vs %v/%v", a1, b1, a2, b2)
	}
}

func TestAutoLayoutTwoRows(t *testing.T) {
	a, b := AutoLayout(1, 1, 1000, 1000)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected one slot per side, got %d/%d", len(a), len(b))
	}
	if b[0].Y <= a[0].Y {
		t.Errorf("side B row must sit below side A: A.y=%d B.y=%d", a[0].Y, b[0].Y)
	}
	if b[0].Y < a[0].Y+a[0].H+layoutRowGap {
		t.Errorf("rows overlap: A ends at %d, B starts at %d", a[0].Y+a[0].H, b[0].Y)
	}
}

func TestAutoLayoutRowHeightClamp(t *testing.T) {
	for _, stageH := range []int{400, 1000, 4000} {
		a, _ := AutoLayout(1, 1, 1000, stageH)
		minH := int(math.Max(120, math.Round(float64(stageH)*0.15)))
		maxH := int(math.Round(float64(stageH) * 0.25))
		if h := a[0].H; h < minH || (h > maxH && minH <= maxH) {
			t.Errorf("stageH=%d: row height %d outside [%d, %d]", stageH, h, minH, maxH)
		}
	}
}

func TestAutoLayoutRowNoOverlapWithinBounds(t *testing.T) {
	const stageW, stageH = 1200, 900
	a, b := AutoLayout(4, 3, stageW, stageH)

	for _, row := range [][]Rect{a, b} {
		for i, s := range row {
			if s.X < 0 || s.X+s.W > stageW {
				t.Errorf("slot %d exceeds stage width: %+v", i, s)
			}
			if i > 0 {
				prev := row[i-1]
				if s.X < prev.X+prev.W {
					t.Errorf("slot %d overlaps slot %d: %+v after %+v", i, i-1, s, prev)
				}
			}
		}
	}
}

func TestAutoLayoutEmptySide(t *testing.T) {
	a, b := AutoLayout(0, 2, 1000, 1000)
	if len(a) != 0 {
		t.Errorf("count 0 must yield empty row, got %v", a)
	}
	if len(b) != 2 {
		t.Errorf("expected 2 slots on side B, got %d", len(b))
	}
}

func TestAutoLayoutEqualWidths(t *testing.T) {
	a, _ := AutoLayout(5, 0, 1000, 1000)
	for i := 1; i < len(a); i++ {
		if a[i].W != a[0].W {
			t.Errorf("slot widths differ: %d vs %d", a[i].W, a[0].W)
		}
		if got, want := a[i].X, a[i-1].X+a[0].W+layoutGap; got != want {
			t.Errorf("slot %d x=%d, want %d", i, got, want)
		}
	}
}

func TestScaleAndMapPoint(t *testing.T) {
	slot := Rect{X: 150, Y: 800, W: 300, H: 150}
	sx, sy := Scale(slot, 300, 150)
	if sx != 1 || sy != 1 {
		t.Fatalf("identity scale expected, got %v/%v", sx, sy)
	}

	sx, sy = Scale(slot, 600, 300)
	const eps = 1e-9
	for _, p := range [][2]float64{{0, 0}, {600, 300}, {123, 45.5}} {
		x, y := MapPoint(slot, p[0], p[1], sx, sy)
		wantX := float64(slot.X) + p[0]*float64(slot.W)/600
		wantY := float64(slot.Y) + p[1]*float64(slot.H)/300
		if math.Abs(x-wantX) > eps || math.Abs(y-wantY) > eps {
			t.Errorf("point %v mapped to (%v,%v), want (%v,%v)", p, x, y, wantX, wantY)
		}
	}
}

func TestPenWidthUsesLargerAxis(t *testing.T) {
	if got := PenWidth(4, 0.5, 2); got != 8 {
		t.Errorf("PenWidth = %v, want 8", got)
	}
	if got := PenWidth(4, 2, 0.5); got != 8 {
		t.Errorf("PenWidth = %v, want 8", got)
	}
}

func TestScaleRejectsDegenerateSource(t *testing.T) {
	sx, sy := Scale(Rect{W: 100, H: 100}, 0, 0)
	if sx != 0 || sy != 0 {
		t.Errorf("zero source size must yield zero scale, got %v/%v", sx, sy)
	}
}

func TestLabel(t *testing.T) {
	if got := Label(SideA, 0); got != "A-1" {
		t.Errorf("Label = %q, want A-1", got)
	}
	if got := Label(SideB, 2); got != "B-3" {
		t.Errorf("Label = %q, want B-3", got)
	}
}
