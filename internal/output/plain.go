package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/snackbar/internal/model"
)

// PlainFormatter writes one block per record for reading in a terminal.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a plain text formatter.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	tmpl, err := parseTemplate("plain", opts.Template)
	if err != nil {
		return nil, err
	}
	return &PlainFormatter{opts: opts, template: tmpl}, nil
}

// Format writes records as plain text.
func (f *PlainFormatter) Format(w io.Writer, records []model.Record) error {
	for i := range records {
		if err := f.formatRecord(w, i+1, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatRecord(w io.Writer, index int, r *model.Record) error {
	if f.template != nil {
		data := templateData{Index: index, Record: r, RelativeTime: r.RelativeTime()}
		if err := f.template.Execute(w, data); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}

	var sb strings.Builder
	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}
	if f.opts.ShowSender && r.Sender != "" {
		fmt.Fprintf(&sb, "<%s> ", r.Sender)
	}
	fmt.Fprintf(&sb, "%s: %s", r.Level, message(r, f.opts.MaxLen))
	if f.opts.ShowTime {
		fmt.Fprintf(&sb, " (%s)", r.RelativeTime())
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "    %s, %s", r.Duration, r.Status())
	if r.InvokedAction != "" {
		fmt.Fprintf(&sb, " %q", r.InvokedAction)
	}
	if len(r.Actions) > 0 {
		labels := make([]string, len(r.Actions))
		for i, a := range r.Actions {
			labels[i] = a.Label
		}
		fmt.Fprintf(&sb, ", actions: %s", strings.Join(labels, ", "))
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
