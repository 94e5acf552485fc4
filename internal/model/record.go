// Package model defines the data structures persisted by snackbard.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"
)

// Levels select the styling and sound of a snackbar.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// ValidLevels returns all valid level values.
func ValidLevels() []string {
	return []string{LevelInfo, LevelSuccess, LevelWarning, LevelError}
}

// NormalizeLevel lowercases level and falls back to info for unknown values.
func NormalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	for _, l := range ValidLevels() {
		if l == level {
			return l
		}
	}
	return LevelInfo
}

// Record is the history entry of one snackbar.
type Record struct {
	ID     string `json:"id" yaml:"id"`
	DBusID uint32 `json:"dbus_id,omitempty" yaml:"dbus_id,omitempty"`
	Sender string `json:"sender,omitempty" yaml:"sender,omitempty"`

	Message  string   `json:"message" yaml:"message"`
	Icon     string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	Actions  []Action `json:"actions,omitempty" yaml:"actions,omitempty"`
	Duration string   `json:"duration" yaml:"duration"`
	Style    string   `json:"style" yaml:"style"`
	Level    string   `json:"level" yaml:"level"`

	ShownAt       int64  `json:"shown_at" yaml:"shown_at"`
	DismissedAt   int64  `json:"dismissed_at,omitempty" yaml:"dismissed_at,omitempty"`
	Reason        string `json:"reason,omitempty" yaml:"reason,omitempty"`
	InvokedAction string `json:"invoked_action,omitempty" yaml:"invoked_action,omitempty"`
}

// Action is a snackbar action button.
type Action struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Validation errors.
var (
	ErrEmptyID       = errors.New("id cannot be empty")
	ErrEmptyMessage  = errors.New("message cannot be empty")
	ErrInvalidLevel  = errors.New("level must be info, success, warning or error")
	ErrInvalidShown  = errors.New("shown_at must be greater than 0")
	ErrTooManyAction = errors.New("at most two actions are supported")
)

// NewRecord creates a Record with a generated ULID.
func NewRecord(message string) (*Record, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &Record{
		ID:      id.String(),
		Message: message,
		Level:   LevelInfo,
		ShownAt: time.Now().Unix(),
	}, nil
}

// Validate checks that the record has all required fields.
func (r *Record) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if r.Message == "" {
		return ErrEmptyMessage
	}
	if NormalizeLevel(r.Level) != r.Level {
		return ErrInvalidLevel
	}
	if r.ShownAt <= 0 {
		return ErrInvalidShown
	}
	if len(r.Actions) > 2 {
		return ErrTooManyAction
	}
	return nil
}

// IsDismissed returns true once the snackbar has left the screen.
func (r *Record) IsDismissed() bool {
	return r.DismissedAt > 0
}

// MarkDismissed records the dismissal time and reason.
func (r *Record) MarkDismissed(reason string) {
	r.DismissedAt = time.Now().Unix()
	r.Reason = reason
}

// Status returns "showing" or the dismissal reason.
func (r *Record) Status() string {
	if !r.IsDismissed() {
		return "showing"
	}
	if r.Reason == "" {
		return "dismissed"
	}
	return r.Reason
}

// ShownTime returns the shown timestamp as a time.Time.
func (r *Record) ShownTime() time.Time {
	return time.Unix(r.ShownAt, 0)
}

// RelativeTime returns a human-readable relative time string, e.g. "5 minutes ago".
func (r *Record) RelativeTime() string {
	return humanize.Time(r.ShownTime())
}

// MessageTruncated returns the message collapsed to one line and truncated
// to maxLen characters with "..." appended.
func (r *Record) MessageTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	msg := []rune(strings.Join(strings.Fields(r.Message), " "))
	if len(msg) <= maxLen {
		return string(msg)
	}
	if maxLen <= 3 {
		return string(msg[:maxLen])
	}
	return string(msg[:maxLen-3]) + "..."
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	clone := *r
	if r.Actions != nil {
		clone.Actions = append([]Action(nil), r.Actions...)
	}
	return &clone
}
