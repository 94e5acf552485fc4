package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/snackbar/internal/model"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// operators in match order; longer operators first.
var operators = []FilterOp{
	FilterOpNotEqual,
	FilterOpGreaterEq,
	FilterOpLessEq,
	FilterOpRegex,
	FilterOpEqual,
	FilterOpContains,
	FilterOpGreater,
	FilterOpLess,
}

// FilterCondition is a single "field op value" test.
type FilterCondition struct {
	Field    string // sender, message, icon, level, reason, action, style, duration, dismissed, shown
	Operator FilterOp
	Value    string

	regex   *regexp.Regexp
	level   int
	boolVal bool
	cutoff  time.Time
}

// FilterExpr is a list of conditions that must all match.
type FilterExpr struct {
	Conditions []FilterCondition
}

// ParseDuration parses a duration that may also use day and week suffixes,
// e.g. 48h, 7d or 1w. "0" and "" mean no limit.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "0" || s == "" {
		return 0, nil
	}

	for suffix, unit := range map[string]time.Duration{"d": 24 * time.Hour, "w": 7 * 24 * time.Hour} {
		if n, found := strings.CutSuffix(s, suffix); found {
			count, err := strconv.Atoi(n)
			if err != nil {
				return 0, fmt.Errorf("invalid duration: %s", s)
			}
			return time.Duration(count) * unit, nil
		}
	}
	return time.ParseDuration(s)
}

// LevelRank orders levels from info to error.
func LevelRank(level string) int {
	level = model.NormalizeLevel(level)
	for i, l := range model.ValidLevels() {
		if l == level {
			return i
		}
	}
	return 0
}

// ParseFilter parses a comma-separated list of conditions, e.g.
//
//	level>=warning,sender=firefox,message~upload,shown>1h
func ParseFilter(expr string) (*FilterExpr, error) {
	filter := &FilterExpr{}
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cond, err := parseCondition(part, time.Now())
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}
	return filter, nil
}

func parseCondition(s string, now time.Time) (FilterCondition, error) {
	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx <= 0 {
			continue
		}
		cond := FilterCondition{
			Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
			Operator: op,
			Value:    strings.TrimSpace(s[idx+len(op):]),
		}
		if err := cond.init(now); err != nil {
			return FilterCondition{}, err
		}
		return cond, nil
	}
	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

func (c *FilterCondition) init(now time.Time) error {
	switch c.Field {
	case "sender", "app":
		c.Field = "sender"
	case "message", "msg", "body":
		c.Field = "message"
	case "icon", "style", "duration":
	case "reason", "status":
		c.Field = "reason"
	case "action", "invoked":
		c.Field = "action"
	case "level":
		level := strings.ToLower(c.Value)
		if model.NormalizeLevel(level) != level {
			return fmt.Errorf("invalid level: %s (use %s)", c.Value, strings.Join(model.ValidLevels(), ", "))
		}
		c.level = LevelRank(level)
	case "dismissed":
		v, err := strconv.ParseBool(c.Value)
		if err != nil {
			return fmt.Errorf("invalid bool for dismissed: %s", c.Value)
		}
		c.boolVal = v
	case "shown", "time", "timestamp":
		c.Field = "shown"
		d, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid shown value: %w", err)
		}
		c.cutoff = now.Add(-d)
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}
	return nil
}

// Match reports whether r satisfies every condition.
func (f *FilterExpr) Match(r model.Record) bool {
	for i := range f.Conditions {
		if !f.Conditions[i].Match(r) {
			return false
		}
	}
	return true
}

// Match reports whether r satisfies the condition.
func (c *FilterCondition) Match(r model.Record) bool {
	switch c.Field {
	case "sender":
		return c.matchString(r.Sender)
	case "message":
		return c.matchString(r.Message)
	case "icon":
		return c.matchString(r.Icon)
	case "style":
		return c.matchString(r.Style)
	case "duration":
		return c.matchString(r.Duration)
	case "reason":
		return c.matchString(r.Status())
	case "action":
		return c.matchString(r.InvokedAction)
	case "level":
		return c.matchInt(LevelRank(r.Level), c.level)
	case "dismissed":
		return c.matchBool(r.IsDismissed())
	case "shown":
		return c.matchTime(r.ShownTime())
	default:
		return false
	}
}

func (c *FilterCondition) matchString(v string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return v == c.Value
	case FilterOpNotEqual:
		return v != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(v), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(v)
	default:
		return false
	}
}

func (c *FilterCondition) matchInt(v, want int) bool {
	switch c.Operator {
	case FilterOpEqual:
		return v == want
	case FilterOpNotEqual:
		return v != want
	case FilterOpGreater:
		return v > want
	case FilterOpLess:
		return v < want
	case FilterOpGreaterEq:
		return v >= want
	case FilterOpLessEq:
		return v <= want
	default:
		return false
	}
}

func (c *FilterCondition) matchBool(v bool) bool {
	switch c.Operator {
	case FilterOpEqual:
		return v == c.boolVal
	case FilterOpNotEqual:
		return v != c.boolVal
	default:
		return false
	}
}

// matchTime compares against now minus the parsed duration, so "shown>1h"
// means within the last hour.
func (c *FilterCondition) matchTime(v time.Time) bool {
	switch c.Operator {
	case FilterOpGreater:
		return v.After(c.cutoff)
	case FilterOpLess:
		return v.Before(c.cutoff)
	case FilterOpGreaterEq:
		return !v.Before(c.cutoff)
	case FilterOpLessEq:
		return !v.After(c.cutoff)
	default:
		return false
	}
}

// Filter returns the records matching expr. A nil or empty expression
// matches everything.
func Filter(records []model.Record, expr *FilterExpr) []model.Record {
	if expr == nil || len(expr.Conditions) == 0 {
		return records
	}
	result := make([]model.Record, 0, len(records))
	for _, r := range records {
		if expr.Match(r) {
			result = append(result, r)
		}
	}
	return result
}
