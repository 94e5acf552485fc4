package core

import (
	"strconv"
	"strings"

	"github.com/jmylchreest/snackbar/internal/model"
)

// LookupByID finds a record by its ULID, case-insensitively.
func LookupByID(records []model.Record, id string) *model.Record {
	for i := range records {
		if strings.EqualFold(records[i].ID, id) {
			return &records[i]
		}
	}
	return nil
}

// LookupByIndex finds a record by its 1-based index.
func LookupByIndex(records []model.Record, index int) *model.Record {
	if index < 1 || index > len(records) {
		return nil
	}
	return &records[index-1]
}

// Lookup resolves a 1-based index or a ULID.
func Lookup(records []model.Record, ref string) *model.Record {
	if index, err := strconv.Atoi(ref); err == nil {
		return LookupByIndex(records, index)
	}
	return LookupByID(records, ref)
}

// Search returns the records whose message or sender contains term,
// case-insensitively.
func Search(records []model.Record, term string) []model.Record {
	if term == "" {
		return records
	}
	term = strings.ToLower(term)
	var result []model.Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Message), term) ||
			strings.Contains(strings.ToLower(r.Sender), term) {
			result = append(result, r)
		}
	}
	return result
}
