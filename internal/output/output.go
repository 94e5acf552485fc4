// Package output provides formatters for snackbar history records.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/snackbar/internal/model"
)

// Formatter formats records for output.
type Formatter interface {
	// Format writes formatted records to the writer.
	Format(w io.Writer, records []model.Record) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatDmenu FormatType = "dmenu"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// ValidFormats returns all format names.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatDmenu, FormatJSON, FormatYAML, FormatIDs}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (FormatType, error) {
	f := FormatType(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatPlain, nil
	}
	for _, valid := range ValidFormats() {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format: %s", s)
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string // Custom template for plain and dmenu output
	ShowIndex  bool   // Show 1-based index prefix
	ShowTime   bool   // Show relative time
	ShowSender bool   // Show sender
	MaxLen     int    // Maximum message length (0 = unlimited)
	Separator  string // Field separator for dmenu format
}

// DefaultFormatterOptions returns the defaults for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:  true,
		ShowTime:   true,
		ShowSender: true,
		MaxLen:     80,
		Separator:  " | ",
	}
}

// NewFormatter creates a formatter for the given format. A template that
// does not parse is an error.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatIDs:
		return NewIDsFormatter(), nil
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	default:
		return NewPlainFormatter(opts)
	}
}

// templateData is passed to custom templates.
type templateData struct {
	Index        int
	Record       *model.Record
	RelativeTime string
}

func parseTemplate(name, text string) (*template.Template, error) {
	if text == "" {
		return nil, nil
	}
	tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			return message(&model.Record{Message: s}, maxLen)
		},
		"reltime": func(ts int64) string {
			return shortRelativeTime(ts, time.Now())
		},
		"humantime": func(ts int64) string {
			return humanize.Time(time.Unix(ts, 0))
		},
		"upper": strings.ToUpper,
	}
}

// message returns the record's message on one line, truncated to maxLen
// unless maxLen is 0.
func message(r *model.Record, maxLen int) string {
	if maxLen <= 0 {
		maxLen = len(r.Message)
	}
	return r.MessageTruncated(maxLen)
}

// shortRelativeTime renders the age of ts compactly, e.g. "5m" or "2d".
func shortRelativeTime(ts int64, now time.Time) string {
	if ts == 0 {
		return "unknown"
	}

	d := now.Sub(time.Unix(ts, 0))
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw", int(d.Hours()/24/7))
	}
}

// FormatField returns a single field of a record.
func FormatField(r *model.Record, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return r.ID
	case "dbus_id":
		return fmt.Sprint(r.DBusID)
	case "sender", "app":
		return r.Sender
	case "icon":
		return r.Icon
	case "level":
		return r.Level
	case "status", "reason":
		return r.Status()
	case "action", "invoked_action":
		return r.InvokedAction
	case "shown", "time":
		return r.RelativeTime()
	default:
		return r.Message
	}
}
