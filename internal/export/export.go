// Package export writes the current display rows (post filter/dedup/sort)
// to a file.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"

	"nless/internal/view"
)

// ToCSV writes the columns as a header row followed by every display row.
func ToCSV(path string, columns []string, rows []view.Row) error {
	if len(rows) == 0 {
		return errors.New("no rows")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.Fields); err != nil {
			return err
		}
	}
	return nil
}

// ToNDJSON writes one JSON object per row, keyed by column name.
func ToNDJSON(path string, columns []string, rows []view.Row) error {
	if len(rows) == 0 {
		return errors.New("no rows")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	defer bw.Flush()
	for _, r := range rows {
		obj := make(map[string]string, len(columns))
		for i, c := range columns {
			if i < len(r.Fields) {
				obj[c] = r.Fields[i]
			}
		}
		b, err := json.Marshal(obj)
		if err != nil {
			return err
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}
