package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/config"
)

type reloadRecorder struct {
	mu      sync.Mutex
	configs []*config.DaemonConfig
	errs    []error
}

func (r *reloadRecorder) reloads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.configs)
}

func (r *reloadRecorder) errors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func newTestConfigWatcher(t *testing.T) (*ConfigWatcher, *reloadRecorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snackbar", "snackbard.toml")

	w, err := NewConfigWatcher(path, discardLogger())
	require.NoError(t, err)
	w.SetReloadDelay(20 * time.Millisecond)

	rec := &reloadRecorder{}
	w.SetReloadCallback(func(cfg *config.DaemonConfig) {
		rec.mu.Lock()
		rec.configs = append(rec.configs, cfg)
		rec.mu.Unlock()
	})
	w.SetErrorCallback(func(err error) {
		rec.mu.Lock()
		rec.errs = append(rec.errs, err)
		rec.mu.Unlock()
	})
	return w, rec, path
}

func TestConfigWatcher_Reload(t *testing.T) {
	w, rec, path := newTestConfigWatcher(t)
	initial := config.DefaultDaemonConfig()
	w.currentConfig = initial

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte("[behavior]\nqueue_length = 3\n"), 0600))
	w.reload()

	require.Equal(t, 1, rec.reloads())
	assert.Equal(t, 3, w.GetCurrentConfig().Behavior.QueueLength)

	require.NoError(t, os.WriteFile(path, []byte("[animation]\ndamping = -1\n"), 0600))
	w.reload()

	assert.Equal(t, 1, rec.errors())
	assert.Equal(t, 3, w.GetCurrentConfig().Behavior.QueueLength, "invalid file keeps the current config")
}

func TestConfigWatcher_ReloadMissingFile(t *testing.T) {
	w, rec, _ := newTestConfigWatcher(t)
	w.reload()
	assert.Zero(t, rec.reloads())
	assert.Zero(t, rec.errors())
}

func TestConfigWatcher_WatchesDirectory(t *testing.T) {
	w, rec, path := newTestConfigWatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, config.DefaultDaemonConfig()))
	defer w.Stop()

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.toml"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(path, []byte("[ratelimit]\nper_second = 2.0\nburst = 4\n"), 0600))

	require.Eventually(t, func() bool { return rec.reloads() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 4, w.GetCurrentConfig().RateLimit.Burst)
	assert.Zero(t, rec.errors())
}

func TestConfigWatcher_StopIsIdempotent(t *testing.T) {
	w, _, _ := newTestConfigWatcher(t)
	require.NoError(t, w.Start(context.Background(), nil))
	w.Stop()
	w.Stop()
}
