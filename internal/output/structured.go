package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/snackbar/internal/model"
)

// JSONFormatter writes records as an indented JSON array.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes records as a JSON array. No records is an empty array.
func (f *JSONFormatter) Format(w io.Writer, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// YAMLFormatter writes records as a YAML sequence.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format writes records as a YAML sequence.
func (f *YAMLFormatter) Format(w io.Writer, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(records); err != nil {
		return err
	}
	return encoder.Close()
}

// IDsFormatter writes record IDs, one per line, for piping into other
// commands.
type IDsFormatter struct{}

// NewIDsFormatter creates an IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes record IDs, one per line.
func (f *IDsFormatter) Format(w io.Writer, records []model.Record) error {
	for _, r := range records {
		if _, err := fmt.Fprintln(w, r.ID); err != nil {
			return err
		}
	}
	return nil
}
