package geom

import (
	"testing"
)

func ringsEqual(a, b Ring) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSplitRingSimple(t *testing.T) {
	square := Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	parts := SplitRing(square)
	if len(parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(parts))
	}
	if !ringsEqual(parts[0], square) {
		t.Errorf("part = %v, vertex order must be untouched", parts[0])
	}
}

func TestSplitRingDropsClosingVertex(t *testing.T) {
	closed := Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}

	parts := SplitRing(closed)
	if len(parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(parts))
	}
	if len(parts[0]) != 4 {
		t.Errorf("part has %d vertices, want 4", len(parts[0]))
	}
}

func TestSplitRingKeyhole(t *testing.T) {
	// Square with a hole reached through a cut at the (0,0) corner.
	keyhole := Ring{
		{0, 0}, {10, 0}, {10, 10}, {0, 10},
		{0, 0}, {4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4},
	}

	parts := SplitRing(keyhole)
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if !ringsEqual(parts[0], Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}) {
		t.Errorf("hull part = %v", parts[0])
	}
	if !ringsEqual(parts[1], Ring{{4, 4}, {6, 4}, {6, 6}, {4, 6}}) {
		t.Errorf("hole part = %v", parts[1])
	}
}

func TestSplitRingTouchingLoops(t *testing.T) {
	// Two squares stitched together at the shared vertex (2,2).
	stitched := Ring{
		{0, 0}, {2, 0}, {2, 2}, {4, 2}, {4, 4}, {2, 4}, {2, 2}, {0, 2},
	}

	parts := SplitRing(stitched)
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if !ringsEqual(parts[0], Ring{{2, 2}, {4, 2}, {4, 4}, {2, 4}}) {
		t.Errorf("first part = %v", parts[0])
	}
	if !ringsEqual(parts[1], Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}}) {
		t.Errorf("second part = %v", parts[1])
	}
}

func TestSplitRingDropsSpikes(t *testing.T) {
	// An out-and-back spike encloses no area.
	spike := Ring{{0, 0}, {5, 0}, {5, 5}, {5, 0}, {0, 0}}

	parts := SplitRing(spike)
	if len(parts) != 0 {
		t.Errorf("got %d parts, want 0 for a pure spike", len(parts))
	}
}

func TestSplitRingEmpty(t *testing.T) {
	if parts := SplitRing(nil); len(parts) != 0 {
		t.Errorf("got %d parts for empty ring", len(parts))
	}
	if parts := SplitRing(Ring{{1, 1}, {2, 2}}); len(parts) != 0 {
		t.Errorf("got %d parts for two-point ring", len(parts))
	}
}
