package view

import "testing"

func TestNavigationWrapsBothDirections(t *testing.T) {
	ix := newMatchIndex()
	ix.reset([]Coord{{0, 0}, {1, 2}, {3, 1}})

	first, ok := ix.Next()
	if !ok || first != (Coord{0, 0}) {
		t.Fatalf("first: %v %v", first, ok)
	}
	ix.Next()
	ix.Next()
	// Fourth Next wraps back to the first match.
	c, _ := ix.Next()
	if c != (Coord{0, 0}) {
		t.Fatalf("wrap forward: %v", c)
	}
	// Prev from the first match wraps to the last.
	ix.Prev()
	c, _ = ix.Prev()
	if c != (Coord{1, 2}) {
		t.Fatalf("wrap backward: %v", c)
	}
}

func TestNavigationEmptyIndex(t *testing.T) {
	ix := newMatchIndex()
	if _, ok := ix.Next(); ok {
		t.Fatalf("expected no match")
	}
	if _, ok := ix.Prev(); ok {
		t.Fatalf("expected no match")
	}
	if ix.Cursor() != -1 {
		t.Fatalf("cursor moved on empty index: %d", ix.Cursor())
	}
}

func TestJumpFirst(t *testing.T) {
	ix := newMatchIndex()
	ix.reset([]Coord{{2, 1}, {4, 0}})
	c, ok := ix.JumpFirst()
	if !ok || c != (Coord{2, 1}) {
		t.Fatalf("jump: %v %v", c, ok)
	}
	if ix.Cursor() != 0 {
		t.Fatalf("cursor: %d", ix.Cursor())
	}
}

func TestPurgeRowRenumbersAndKeepsCursor(t *testing.T) {
	ix := newMatchIndex()
	ix.reset([]Coord{{0, 0}, {1, 1}, {2, 0}})
	ix.Next()
	ix.Next() // cursor on {1,1}
	ix.purgeRow(0)
	if ix.Len() != 2 {
		t.Fatalf("len: %d", ix.Len())
	}
	if cur, _ := ix.Current(); cur != (Coord{0, 1}) {
		t.Fatalf("cursor should follow the same match: %v", cur)
	}
	if ix.Coords()[1] != (Coord{1, 0}) {
		t.Fatalf("renumber: %v", ix.Coords())
	}
}

func TestInsertRowSplicesRowMajor(t *testing.T) {
	ix := newMatchIndex()
	ix.reset([]Coord{{0, 0}, {2, 1}})
	ix.insertRow(1, []int{0, 2})
	want := []Coord{{0, 0}, {1, 0}, {1, 2}, {3, 1}}
	got := ix.Coords()
	if len(got) != len(want) {
		t.Fatalf("coords: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("coords: %v", got)
		}
	}
}
