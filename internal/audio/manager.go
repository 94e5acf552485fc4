package audio

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/snackbar/internal/config"
)

// Levels are the snackbar levels that can carry a sound.
var Levels = []string{"info", "success", "warning", "error"}

// Manager plays the sound configured for a snackbar level.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher
	enabled bool

	// level -> expanded sound path
	sounds map[string]string
}

// NewManager creates a new audio manager.
func NewManager(cfg *config.DaemonConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	player := NewPlayer(logger)
	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
		sounds:  make(map[string]string),
	}
	m.apply(cfg)
	return m
}

// resolveSounds maps every level to an existing sound file. Missing files are
// logged and skipped.
func resolveSounds(cfg *config.DaemonConfig, logger *slog.Logger) map[string]string {
	sounds := make(map[string]string, len(Levels))
	if cfg == nil {
		return sounds
	}
	for _, level := range Levels {
		path := cfg.GetSoundForLevel(level)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			logger.Warn("sound file not found", "level", level, "path", path)
			continue
		}
		sounds[level] = path
	}
	return sounds
}

func (m *Manager) apply(cfg *config.DaemonConfig) {
	sounds := resolveSounds(cfg, m.logger)

	m.mu.Lock()
	m.sounds = sounds
	m.enabled = cfg != nil && cfg.Audio.Enabled
	m.mu.Unlock()

	if cfg != nil {
		m.player.SetVolume(float64(cfg.Audio.Volume) / 100.0)
	}
}

func (m *Manager) paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.sounds))
	for _, path := range m.sounds {
		paths = append(paths, path)
	}
	return paths
}

// Start preloads the configured sounds and starts watching them.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.watcher.Start(ctx); err != nil {
		return err
	}
	paths := m.paths()
	m.preload(paths)
	m.logger.Info("audio manager started", "sounds", len(paths), "enabled", m.Enabled())
	return nil
}

func (m *Manager) preload(paths []string) {
	if !m.Enabled() {
		return
	}
	for _, path := range paths {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}
}

// Stop shuts down the audio manager.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// Enabled reports whether sounds are played at all.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// SoundForLevel returns the resolved sound for level, if any.
func (m *Manager) SoundForLevel(level string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.sounds[level]
	if !ok && level != "info" {
		path, ok = m.sounds["info"]
	}
	return path, ok
}

// PlayForLevel plays override when set, otherwise the sound configured for
// level. Unknown levels use the info sound.
func (m *Manager) PlayForLevel(level, override string) error {
	if !m.Enabled() {
		return nil
	}
	path := override
	if path == "" {
		var ok bool
		if path, ok = m.SoundForLevel(level); !ok {
			return nil
		}
	}
	return m.player.Play(path)
}

// UpdateConfig applies a reloaded configuration.
func (m *Manager) UpdateConfig(cfg *config.DaemonConfig) {
	for _, path := range m.paths() {
		m.watcher.Unwatch(path)
	}
	m.player.ClearCache()
	m.apply(cfg)
	m.preload(m.paths())
	m.logger.Debug("audio manager config updated")
}
