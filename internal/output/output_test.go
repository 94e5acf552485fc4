package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/snackbar/internal/model"
)

func testRecords() []model.Record {
	now := time.Now()
	return []model.Record{
		{
			ID:       "01HQ0000000000000000000001",
			Sender:   "firefox",
			Message:  "Download complete",
			Duration: "middle",
			Style:    "fade",
			Level:    model.LevelSuccess,
			ShownAt:  now.Add(-5 * time.Minute).Unix(),
		},
		{
			ID:            "01HQ0000000000000000000002",
			Sender:        "mail",
			Message:       "Message archived",
			Actions:       []model.Action{{Key: "undo", Label: "Undo"}},
			Duration:      "long",
			Style:         "slide-bottom-up",
			Level:         model.LevelInfo,
			ShownAt:       now.Add(-2 * time.Hour).Unix(),
			DismissedAt:   now.Add(-2 * time.Hour).Unix(),
			Reason:        "action",
			InvokedAction: "undo",
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"plain", "dmenu", "json", "yaml", "ids", "JSON"} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}

	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPlain, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestNewFormatter(t *testing.T) {
	opts := DefaultFormatterOptions()
	tests := []struct {
		format FormatType
		check  func(Formatter) bool
	}{
		{FormatPlain, func(f Formatter) bool { _, ok := f.(*PlainFormatter); return ok }},
		{FormatDmenu, func(f Formatter) bool { _, ok := f.(*DmenuFormatter); return ok }},
		{FormatJSON, func(f Formatter) bool { _, ok := f.(*JSONFormatter); return ok }},
		{FormatYAML, func(f Formatter) bool { _, ok := f.(*YAMLFormatter); return ok }},
		{FormatIDs, func(f Formatter) bool { _, ok := f.(*IDsFormatter); return ok }},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f, err := NewFormatter(tt.format, opts)
			require.NoError(t, err)
			assert.True(t, tt.check(f))
		})
	}

	opts.Template = "{{.Index"
	_, err := NewFormatter(FormatPlain, opts)
	assert.Error(t, err)
}

func TestPlainFormatter(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewPlainFormatter(DefaultFormatterOptions())
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testRecords()))

	out := buf.String()
	assert.Contains(t, out, "[1] <firefox> success: Download complete (5 minutes ago)")
	assert.Contains(t, out, "    middle, showing\n")
	assert.Contains(t, out, "[2] <mail> info: Message archived (2 hours ago)")
	assert.Contains(t, out, `    long, action "undo", actions: Undo`)
}

func TestPlainFormatter_Template(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultFormatterOptions()
	opts.Template = "{{.Index}}: {{.Record.Sender}} - {{truncate .Record.Message 8}}"
	f, err := NewPlainFormatter(opts)
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testRecords()))

	assert.Equal(t, "1: firefox - Downl...\n2: mail - Messa...\n", buf.String())
}

func TestDmenuFormatter(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewDmenuFormatter(DefaultFormatterOptions())
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testRecords()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1 | 5m | firefox | Download complete", lines[0])
	assert.Equal(t, "2 | 2h | mail | Message archived", lines[1])
}

func TestDmenuFormatter_Truncates(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultFormatterOptions()
	opts.ShowIndex = false
	opts.ShowTime = false
	opts.ShowSender = false
	opts.MaxLen = 10
	f, err := NewDmenuFormatter(opts)
	require.NoError(t, err)

	records := []model.Record{{Message: "A long\nmessage that will not fit"}}
	require.NoError(t, f.Format(&buf, records))
	assert.Equal(t, "A long ...\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, testRecords()))

	var got []model.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "undo", got[1].InvokedAction)

	buf.Reset()
	require.NoError(t, NewJSONFormatter().Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Format(&buf, testRecords()))
	assert.Contains(t, buf.String(), "invoked_action: undo")
	assert.Contains(t, buf.String(), "shown_at: ")

	var got []model.Record
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Undo", got[1].Actions[0].Label)
}

func TestIDsFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().Format(&buf, testRecords()))
	assert.Equal(t, "01HQ0000000000000000000001\n01HQ0000000000000000000002\n", buf.String())
}

func TestFormatField(t *testing.T) {
	r := &testRecords()[1]
	tests := []struct {
		field string
		want  string
	}{
		{"id", "01HQ0000000000000000000002"},
		{"sender", "mail"},
		{"level", "info"},
		{"status", "action"},
		{"action", "undo"},
		{"message", "Message archived"},
		{"unknown", "Message archived"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatField(r, tt.field))
		})
	}
}

func TestShortRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		ts   int64
		want string
	}{
		{"zero", 0, "unknown"},
		{"now", now.Unix(), "now"},
		{"5 minutes", now.Add(-5 * time.Minute).Unix(), "5m"},
		{"2 hours", now.Add(-2 * time.Hour).Unix(), "2h"},
		{"3 days", now.Add(-72 * time.Hour).Unix(), "3d"},
		{"2 weeks", now.Add(-14 * 24 * time.Hour).Unix(), "2w"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shortRelativeTime(tt.ts, now))
		})
	}
}
