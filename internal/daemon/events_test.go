package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

type testSource struct {
	fn       func(snackbar.Event)
	released int
}

func (s *testSource) Subscribe(fn func(snackbar.Event)) snackbar.Subscription {
	s.fn = fn
	return s
}

func (s *testSource) Release() { s.released++ }

func TestMergeEvents(t *testing.T) {
	assert.Nil(t, MergeEvents())
	assert.Nil(t, MergeEvents(nil, nil))

	single := &testSource{}
	assert.Same(t, single, MergeEvents(nil, single))

	a, b := &testSource{}, &testSource{}
	merged := MergeEvents(a, nil, b)

	var got []snackbar.EventKind
	sub := merged.Subscribe(func(ev snackbar.Event) { got = append(got, ev.Kind) })
	a.fn(snackbar.Event{Kind: snackbar.KeyboardShown, KeyboardHeight: 200})
	b.fn(snackbar.Event{Kind: snackbar.Resized})
	assert.Equal(t, []snackbar.EventKind{snackbar.KeyboardShown, snackbar.Resized}, got)

	sub.Release()
	assert.Equal(t, 1, a.released)
	assert.Equal(t, 1, b.released)
}
