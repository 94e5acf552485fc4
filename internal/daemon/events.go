package daemon

import "github.com/jmylchreest/snackbar/internal/snackbar"

// MergeEvents combines event sources into one. Nil sources are skipped.
func MergeEvents(sources ...snackbar.EventSource) snackbar.EventSource {
	var merged mergedEvents
	for _, src := range sources {
		if src != nil {
			merged = append(merged, src)
		}
	}
	switch len(merged) {
	case 0:
		return nil
	case 1:
		return merged[0]
	}
	return merged
}

type mergedEvents []snackbar.EventSource

func (m mergedEvents) Subscribe(fn func(snackbar.Event)) snackbar.Subscription {
	subs := make(subscriptions, 0, len(m))
	for _, src := range m {
		if sub := src.Subscribe(fn); sub != nil {
			subs = append(subs, sub)
		}
	}
	return subs
}

type subscriptions []snackbar.Subscription

func (s subscriptions) Release() {
	for _, sub := range s {
		sub.Release()
	}
}
