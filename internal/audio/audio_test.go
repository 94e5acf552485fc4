package audio

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/config"
)

func TestDecoderFor(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"/a/b.wav", false},
		{"/a/b.WAV", false},
		{"/a/b.ogg", false},
		{"/a/b.oga", false},
		{"/a/b.mp3", false},
		{"/a/b.flac", true},
		{"/a/noext", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			dec, err := decoderFor(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				assert.Nil(t, dec)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, dec)
		})
	}
}

func TestVolumeToDecibels(t *testing.T) {
	assert.InDelta(t, 0, volumeToDecibels(1), 1e-9)
	assert.InDelta(t, -6.02, volumeToDecibels(0.5), 0.01)
	assert.InDelta(t, -20, volumeToDecibels(0.1), 1e-9)
	assert.Equal(t, -100.0, volumeToDecibels(0))
}

func TestPlayer_SetVolumeClamps(t *testing.T) {
	p := NewPlayer(nil)
	p.SetVolume(1.5)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())
	p.SetVolume(0.25)
	assert.Equal(t, 0.25, p.Volume())
}

func TestPlayer_PlayUnsupported(t *testing.T) {
	p := NewPlayer(nil)
	assert.NoError(t, p.Play(""))
	assert.ErrorIs(t, p.Play("/tmp/sound.flac"), ErrUnsupportedFormat)
}

func writeSound(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0600))
	return path
}

func TestResolveSounds(t *testing.T) {
	dir := t.TempDir()
	info := writeSound(t, dir, "info.wav")
	errSound := writeSound(t, dir, "error.ogg")

	cfg := config.DefaultDaemonConfig()
	cfg.Audio.Sounds = config.SoundConfig{
		Info:    info,
		Warning: filepath.Join(dir, "missing.wav"),
		Error:   errSound,
	}

	sounds := resolveSounds(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, map[string]string{
		"info":  info,
		"error": errSound,
	}, sounds)
}

func TestManager_SoundForLevel(t *testing.T) {
	dir := t.TempDir()
	info := writeSound(t, dir, "info.wav")
	warn := writeSound(t, dir, "warn.wav")

	cfg := config.DefaultDaemonConfig()
	cfg.Audio.Enabled = true
	cfg.Audio.Sounds = config.SoundConfig{Info: info, Warning: warn}

	m := NewManager(cfg, nil)
	assert.True(t, m.Enabled())

	path, ok := m.SoundForLevel("warning")
	assert.True(t, ok)
	assert.Equal(t, warn, path)

	path, ok = m.SoundForLevel("bogus")
	assert.True(t, ok)
	assert.Equal(t, info, path)

	cfg2 := config.DefaultDaemonConfig()
	m.UpdateConfig(cfg2)
	assert.False(t, m.Enabled())
	_, ok = m.SoundForLevel("warning")
	assert.False(t, ok)
}

func TestManager_PlayForLevelDisabled(t *testing.T) {
	cfg := config.DefaultDaemonConfig()
	cfg.Audio.Enabled = false
	m := NewManager(cfg, nil)

	// Disabled audio never touches the override path.
	assert.NoError(t, m.PlayForLevel("error", "/does/not/exist.wav"))
}

func TestManager_PlayForLevelNoSound(t *testing.T) {
	cfg := config.DefaultDaemonConfig()
	cfg.Audio.Enabled = true
	m := NewManager(cfg, nil)

	assert.NoError(t, m.PlayForLevel("info", ""))
	assert.Error(t, m.PlayForLevel("info", "/does/not/exist.wav"))
}

func TestWatcher_InvalidatesWatchedPaths(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "a.wav")
	other := filepath.Join(dir, "b.wav")

	p := NewPlayer(nil)
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	p.cache[watched] = beep.NewBuffer(format)
	p.cache[other] = beep.NewBuffer(format)

	w := NewWatcher(p, nil)
	w.Watch(watched)

	w.handle(fsnotify.Event{Name: other, Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: watched, Op: fsnotify.Chmod})
	assert.Len(t, p.cache, 2)

	w.handle(fsnotify.Event{Name: watched, Op: fsnotify.Write})
	assert.NotContains(t, p.cache, watched)
	assert.Contains(t, p.cache, other)

	w.Unwatch(watched)
	assert.Empty(t, w.paths)
	assert.Empty(t, w.dirs)
}
