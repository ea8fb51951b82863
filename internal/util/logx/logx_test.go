package logx

import (
	"strings"
	"testing"
)

func TestLevelGating(t *testing.T) {
	std = &ring{min: Warn}
	Debugf("nope")
	Infof("nope")
	Warnf("kept %d", 1)
	Errorf("kept %d", 2)

	got := Tail(ringSize)
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	if !strings.Contains(got[0], "WARN") || !strings.Contains(got[1], "ERROR") {
		t.Fatalf("unexpected records: %v", got)
	}
}

func TestRingOverwritesOldest(t *testing.T) {
	std = &ring{min: Info}
	for i := 0; i < ringSize+10; i++ {
		Infof("line %d", i)
	}
	got := Tail(ringSize)
	if len(got) != ringSize {
		t.Fatalf("records = %d, want %d", len(got), ringSize)
	}
	if !strings.HasSuffix(got[0], "line 10") {
		t.Fatalf("oldest retained = %q, want line 10", got[0])
	}
	if !strings.HasSuffix(got[len(got)-1], "line 509") {
		t.Fatalf("newest retained = %q, want line 509", got[len(got)-1])
	}
}

func TestTailReturnsMostRecentOldestFirst(t *testing.T) {
	std = &ring{min: Info}
	Infof("a")
	Infof("b")
	Infof("c")
	got := Tail(2)
	if len(got) != 2 || !strings.HasSuffix(got[0], " b") || !strings.HasSuffix(got[1], " c") {
		t.Fatalf("tail = %v", got)
	}
	if !strings.Contains(Dump(), " a") {
		t.Fatalf("dump should retain all records")
	}
}
