package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"nless/internal/view"
)

func sampleRows() []view.Row {
	return []view.Row{
		{Fields: []string{"2", "a", "x"}},
		{Fields: []string{"1", "b", "y"}},
	}
}

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := ToCSV(path, []string{"count", "k", "v"}, sampleRows()); err != nil {
		t.Fatalf("csv: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 3 || recs[0][0] != "count" || recs[1][2] != "x" {
		t.Fatalf("records: %v", recs)
	}
}

func TestToNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")
	if err := ToNDJSON(path, []string{"count", "k", "v"}, sampleRows()); err != nil {
		t.Fatalf("ndjson: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var first map[string]string
	if err := json.Unmarshal(b[:bytes.IndexByte(b, '\n')], &first); err != nil {
		t.Fatalf("json: %v", err)
	}
	if first["k"] != "a" || first["count"] != "2" {
		t.Fatalf("object: %v", first)
	}
}

func TestEmptyRowsError(t *testing.T) {
	if err := ToCSV(filepath.Join(t.TempDir(), "x.csv"), []string{"a"}, nil); err == nil {
		t.Fatalf("expected error")
	}
}
