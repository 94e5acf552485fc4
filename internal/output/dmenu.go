package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/jmylchreest/snackbar/internal/model"
)

// DmenuFormatter writes one line per record for dmenu, rofi or fuzzel.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
	now      func() time.Time
}

// NewDmenuFormatter creates a dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) (*DmenuFormatter, error) {
	tmpl, err := parseTemplate("dmenu", opts.Template)
	if err != nil {
		return nil, err
	}
	return &DmenuFormatter{opts: opts, template: tmpl, now: time.Now}, nil
}

// Format writes records one per line.
func (f *DmenuFormatter) Format(w io.Writer, records []model.Record) error {
	for i := range records {
		line, err := f.formatLine(i+1, &records[i])
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (f *DmenuFormatter) formatLine(index int, r *model.Record) (string, error) {
	if f.template != nil {
		var buf strings.Builder
		data := templateData{Index: index, Record: r, RelativeTime: shortRelativeTime(r.ShownAt, f.now())}
		if err := f.template.Execute(&buf, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprint(index))
	}
	if f.opts.ShowTime {
		parts = append(parts, shortRelativeTime(r.ShownAt, f.now()))
	}
	if f.opts.ShowSender && r.Sender != "" {
		parts = append(parts, r.Sender)
	}
	parts = append(parts, message(r, f.opts.MaxLen))
	return strings.Join(parts, sep), nil
}
