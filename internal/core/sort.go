package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmylchreest/snackbar/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByShown  SortField = "shown"
	SortBySender SortField = "sender"
	SortByLevel  SortField = "level"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns newest first.
func DefaultSortOptions() SortOptions {
	return SortOptions{Field: SortByShown, Order: SortDesc}
}

// Sort sorts records in place. Ties keep their current order.
func Sort(records []model.Record, opts SortOptions) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if opts.Order == SortDesc {
			a, b = b, a
		}
		switch opts.Field {
		case SortBySender:
			return strings.ToLower(a.Sender) < strings.ToLower(b.Sender)
		case SortByLevel:
			return LevelRank(a.Level) < LevelRank(b.Level)
		default:
			return a.ShownAt < b.ShownAt
		}
	})
}

// ParseSortField parses a sort field name.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shown", "time", "timestamp":
		return SortByShown, nil
	case "sender", "app":
		return SortBySender, nil
	case "level":
		return SortByLevel, nil
	default:
		return "", fmt.Errorf("invalid sort field: %s (use shown, sender or level)", s)
	}
}

// ParseSortOrder parses a sort order name.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending":
		return SortDesc, nil
	case "asc", "ascending":
		return SortAsc, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (use asc or desc)", s)
	}
}
