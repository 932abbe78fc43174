// Package roster loads the institute roster CSV used to enrich accounts
// created with a roll number. The dataset is append-only, so it is read
// once at startup.
package roster

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/anant-society/membership-api/internal/domain"
)

// Roster is an in-memory index of the CSV keyed by roll number.
type Roster struct {
	byRoll map[int64]domain.RosterEntry
}

// Load reads the CSV at path. The first row is a header; recognised columns
// are roll_number, batch, branch, position and club_dept. Rows with an
// unparseable roll number are skipped.
func Load(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(rows) == 0 {
		return &Roster{byRoll: map[int64]domain.RosterEntry{}}, nil
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[name] = i
	}

	byRoll := make(map[int64]domain.RosterEntry, len(rows)-1)
	for _, row := range rows[1:] {
		roll, err := strconv.ParseInt(field(row, col, "roll_number"), 10, 64)
		if err != nil {
			continue
		}
		byRoll[roll] = domain.RosterEntry{
			Batch:    field(row, col, "batch"),
			Branch:   field(row, col, "branch"),
			Position: field(row, col, "position"),
			ClubDept: field(row, col, "club_dept"),
		}
	}
	return &Roster{byRoll: byRoll}, nil
}

// Empty returns a roster with no entries; every lookup misses.
func Empty() *Roster {
	return &Roster{byRoll: map[int64]domain.RosterEntry{}}
}

// Lookup returns the roster entry for rollNumber. A miss is not an error;
// accounts are still created with base fields only.
func (r *Roster) Lookup(rollNumber int64) (domain.RosterEntry, bool) {
	e, ok := r.byRoll[rollNumber]
	return e, ok
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
