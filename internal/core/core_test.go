package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/model"
)

func testRecords() []model.Record {
	now := time.Now()
	return []model.Record{
		{
			ID:      "01HQ0000000000000000000001",
			Sender:  "firefox",
			Message: "Download complete",
			Level:   model.LevelSuccess,
			Style:   "fade",
			ShownAt: now.Add(-5 * time.Minute).Unix(),
		},
		{
			ID:            "01HQ0000000000000000000002",
			Sender:        "mail",
			Message:       "Message archived",
			Level:         model.LevelInfo,
			Style:         "slide-bottom-up",
			ShownAt:       now.Add(-2 * time.Hour).Unix(),
			DismissedAt:   now.Add(-2 * time.Hour).Unix(),
			Reason:        "action",
			InvokedAction: "undo",
		},
		{
			ID:          "01HQ0000000000000000000003",
			Sender:      "backup",
			Message:     "Upload failed",
			Level:       model.LevelError,
			Style:       "fade",
			ShownAt:     now.Add(-48 * time.Hour).Unix(),
			DismissedAt: now.Add(-48 * time.Hour).Unix(),
			Reason:      "expired",
		},
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"90m", 90 * time.Minute, false},
		{"2d", 48 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"xd", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		expr string
		want []string // senders
	}{
		{"", []string{"firefox", "mail", "backup"}},
		{"sender=mail", []string{"mail"}},
		{"sender!=mail", []string{"firefox", "backup"}},
		{"message~UPLOAD", []string{"backup"}},
		{"message~=^(Download|Upload)", []string{"firefox", "backup"}},
		{"level>=success", []string{"firefox", "backup"}},
		{"level=info", []string{"mail"}},
		{"dismissed=false", []string{"firefox"}},
		{"reason=expired", []string{"backup"}},
		{"status=showing", []string{"firefox"}},
		{"action=undo", []string{"mail"}},
		{"shown>1h", []string{"firefox"}},
		{"shown<1d", []string{"backup"}},
		{"style=fade,level>info", []string{"firefox", "backup"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr, err := ParseFilter(tt.expr)
			require.NoError(t, err)

			var got []string
			for _, r := range Filter(testRecords(), expr) {
				got = append(got, r.Sender)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilter_Errors(t *testing.T) {
	for _, expr := range []string{
		"sender",
		"colour=red",
		"level=critical",
		"dismissed=maybe",
		"message~=(",
		"shown>soon",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseFilter(expr)
			assert.Error(t, err)
		})
	}
}

func TestSort(t *testing.T) {
	senders := func(rs []model.Record) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.Sender
		}
		return out
	}

	records := testRecords()
	Sort(records, DefaultSortOptions())
	assert.Equal(t, []string{"firefox", "mail", "backup"}, senders(records))

	Sort(records, SortOptions{Field: SortByShown, Order: SortAsc})
	assert.Equal(t, []string{"backup", "mail", "firefox"}, senders(records))

	Sort(records, SortOptions{Field: SortBySender, Order: SortAsc})
	assert.Equal(t, []string{"backup", "firefox", "mail"}, senders(records))

	Sort(records, SortOptions{Field: SortByLevel, Order: SortDesc})
	assert.Equal(t, []string{"backup", "firefox", "mail"}, senders(records))
}

func TestParseSort(t *testing.T) {
	field, err := ParseSortField("app")
	require.NoError(t, err)
	assert.Equal(t, SortBySender, field)

	_, err = ParseSortField("urgency")
	assert.Error(t, err)

	order, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortDesc, order)

	_, err = ParseSortOrder("sideways")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	records := testRecords()

	assert.Equal(t, "firefox", Lookup(records, "1").Sender)
	assert.Equal(t, "backup", Lookup(records, "3").Sender)
	assert.Nil(t, Lookup(records, "0"))
	assert.Nil(t, Lookup(records, "4"))
	assert.Equal(t, "mail", Lookup(records, "01hq0000000000000000000002").Sender)
	assert.Nil(t, Lookup(records, "01HQZZZ"))
}

func TestSearch(t *testing.T) {
	records := testRecords()
	assert.Len(t, Search(records, ""), 3)
	assert.Len(t, Search(records, "FIREFOX"), 1)
	assert.Len(t, Search(records, "message"), 1)
	assert.Empty(t, Search(records, "nothing"))
}
