package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "300ms", "3s", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '300ms', '3s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int {
	return int(time.Duration(d).Milliseconds())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for snackbard.
// Loaded from ~/.config/snackbar/snackbard.toml
type DaemonConfig struct {
	Display       DisplayConfig       `toml:"display"`
	Timing        TimingConfig        `toml:"timing"`
	Animation     AnimationConfig     `toml:"animation"`
	Behavior      BehaviorConfig      `toml:"behavior"`
	Keyboard      KeyboardConfig      `toml:"keyboard"`
	Accessibility AccessibilityConfig `toml:"accessibility"`
	Audio         AudioConfig         `toml:"audio"`
	Theme         ThemeConfig         `toml:"theme"`
	Mouse         MouseConfig         `toml:"mouse"`
	RateLimit     RateLimitConfig     `toml:"ratelimit"`
}

// DisplayConfig contains the resting geometry of a snackbar.
type DisplayConfig struct {
	MarginLeft   int     `toml:"margin_left"`
	MarginRight  int     `toml:"margin_right"`
	MarginTop    int     `toml:"margin_top"`
	MarginBottom int     `toml:"margin_bottom"`
	MinHeight    int     `toml:"min_height"`
	MaxWidth     int     `toml:"max_width"` // 0 = full monitor width
	Monitor      int     `toml:"monitor"`   // 0 = compositor choice, 1+ = specific monitor
	Opacity      float64 `toml:"opacity"`   // 0.0-1.0, background opacity for blur effects
}

// TimingConfig maps snackbar durations to wall time.
type TimingConfig struct {
	Short  Duration `toml:"short"`
	Middle Duration `toml:"middle"`
	Long   Duration `toml:"long"`
}

// AnimationConfig contains entrance and exit animation settings.
type AnimationConfig struct {
	Style           string   `toml:"style"`    // e.g. "slide-bottom-up", "fade"
	Duration        Duration `toml:"duration"` // "0" disables animation
	Damping         float64  `toml:"damping"`
	InitialVelocity float64  `toml:"initial_velocity"`
	FPS             int      `toml:"fps"`
}

// BehaviorConfig contains behavior settings.
type BehaviorConfig struct {
	DismissOnSwipe bool `toml:"dismiss_on_swipe"`
	DismissOnTap   bool `toml:"dismiss_on_tap"`
	QueueLength    int  `toml:"queue_length"` // Max snackbars waiting behind the visible one
}

// KeyboardConfig controls how on-screen keyboards push snackbars up.
type KeyboardConfig struct {
	Padding  int  `toml:"padding"`   // Gap kept above the keyboard
	Height   int  `toml:"height"`    // Assumed keyboard height when the OSK reports visible
	WatchOSK bool `toml:"watch_osk"` // Follow sm.puri.OSK0 on the session bus
}

// AccessibilityConfig contains screen reader settings.
type AccessibilityConfig struct {
	Announce bool `toml:"announce"`
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-level sound file paths.
type SoundConfig struct {
	Info    string `toml:"info"`
	Success string `toml:"success"`
	Warning string `toml:"warning"`
	Error   string `toml:"error"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Theme name without .css extension
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// MouseConfig contains mouse button action mappings.
type MouseConfig struct {
	Left   string `toml:"left"`   // "tap", "dismiss", "do-action", "none"
	Middle string `toml:"middle"` // "tap", "dismiss", "do-action", "none"
	Right  string `toml:"right"`  // "tap", "dismiss", "do-action", "none"
}

// MouseAction represents a mouse button action.
type MouseAction string

const (
	MouseActionTap      MouseAction = "tap"
	MouseActionDismiss  MouseAction = "dismiss"
	MouseActionDoAction MouseAction = "do-action"
	MouseActionNone     MouseAction = "none"
)

// RateLimitConfig limits how fast a single D-Bus sender may show snackbars.
type RateLimitConfig struct {
	PerSecond float64 `toml:"per_second"` // 0 disables limiting
	Burst     int     `toml:"burst"`
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Display: DisplayConfig{
			MarginLeft:   5,
			MarginRight:  5,
			MarginTop:    5,
			MarginBottom: 5,
			MinHeight:    60,
			MaxWidth:     600,
			Monitor:      0,
			Opacity:      1.0,
		},
		Timing: TimingConfig{
			Short:  Duration(1 * time.Second),
			Middle: Duration(3 * time.Second),
			Long:   Duration(5 * time.Second),
		},
		Animation: AnimationConfig{
			Style:           snackbar.DefaultStyle.String(),
			Duration:        Duration(300 * time.Millisecond),
			Damping:         0.7,
			InitialVelocity: 5,
			FPS:             60,
		},
		Behavior: BehaviorConfig{
			DismissOnSwipe: true,
			DismissOnTap:   true,
			QueueLength:    20,
		},
		Keyboard: KeyboardConfig{
			Padding:  8,
			Height:   280,
			WatchOSK: true,
		},
		Accessibility: AccessibilityConfig{
			Announce: true,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
			Sounds:  SoundConfig{},
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
		Mouse: MouseConfig{
			Left:   string(MouseActionTap),
			Middle: string(MouseActionDoAction),
			Right:  string(MouseActionDismiss),
		},
		RateLimit: RateLimitConfig{
			PerSecond: 5,
			Burst:     10,
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "snackbar", "snackbard.toml"), nil
}

// LoadDaemonConfig loads the daemon configuration from the default path.
// If the file doesn't exist, returns the default configuration.
func LoadDaemonConfig() (*DaemonConfig, error) {
	path, err := DaemonConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadDaemonConfigFrom(path)
}

// LoadDaemonConfigFrom loads the daemon configuration from path.
func LoadDaemonConfigFrom(path string) (*DaemonConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveDaemonConfig saves the daemon configuration to the default path.
func SaveDaemonConfig(config *DaemonConfig) error {
	path, err := DaemonConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveDaemonConfigTo(config, path)
}

// SaveDaemonConfigTo writes the daemon configuration to path.
func SaveDaemonConfigTo(config *DaemonConfig, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	if _, err := snackbar.ParseStyle(c.Animation.Style); err != nil {
		return fmt.Errorf("invalid animation style, must be one of: %v: %w", snackbar.StyleNames(), err)
	}

	for name, d := range map[string]Duration{
		"short":  c.Timing.Short,
		"middle": c.Timing.Middle,
		"long":   c.Timing.Long,
	} {
		if d <= 0 {
			return fmt.Errorf("timing.%s must be positive, got %s", name, d.Duration())
		}
	}
	if c.Animation.Duration < 0 {
		return fmt.Errorf("animation duration must not be negative, got %s", c.Animation.Duration.Duration())
	}
	if c.Animation.Damping <= 0 || c.Animation.Damping > 2 {
		return fmt.Errorf("damping must be in (0, 2], got %g", c.Animation.Damping)
	}
	if c.Animation.FPS < 1 || c.Animation.FPS > 240 {
		return fmt.Errorf("fps must be between 1 and 240, got %d", c.Animation.FPS)
	}

	if c.Display.MinHeight < 0 {
		return fmt.Errorf("min_height must not be negative, got %d", c.Display.MinHeight)
	}
	if c.Display.Opacity < 0 || c.Display.Opacity > 1 {
		return fmt.Errorf("opacity must be between 0 and 1, got %g", c.Display.Opacity)
	}
	if c.Behavior.QueueLength < 0 {
		return fmt.Errorf("queue_length must not be negative, got %d", c.Behavior.QueueLength)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	validScheme := false
	for _, s := range ValidColorSchemes() {
		if c.Theme.ColorScheme == string(s) {
			validScheme = true
			break
		}
	}
	if !validScheme {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	validActions := map[string]bool{
		string(MouseActionTap):      true,
		string(MouseActionDismiss):  true,
		string(MouseActionDoAction): true,
		string(MouseActionNone):     true,
	}
	for _, action := range []string{c.Mouse.Left, c.Mouse.Middle, c.Mouse.Right} {
		if !validActions[action] {
			return fmt.Errorf("invalid mouse action %q", action)
		}
	}

	if c.RateLimit.PerSecond < 0 {
		return fmt.Errorf("ratelimit per_second must not be negative, got %g", c.RateLimit.PerSecond)
	}
	if c.RateLimit.PerSecond > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("ratelimit burst must be at least 1, got %d", c.RateLimit.Burst)
	}

	return nil
}

// Style returns the configured animation style. Validate guarantees it parses.
func (c *DaemonConfig) Style() snackbar.AnimationStyle {
	style, err := snackbar.ParseStyle(c.Animation.Style)
	if err != nil {
		return snackbar.DefaultStyle
	}
	return style
}

// SnackbarTiming converts the timing section.
func (c *DaemonConfig) SnackbarTiming() snackbar.Timing {
	return snackbar.Timing{
		Short:  c.Timing.Short.Duration(),
		Middle: c.Timing.Middle.Duration(),
		Long:   c.Timing.Long.Duration(),
	}
}

// SnackbarLayout converts the display and keyboard sections.
func (c *DaemonConfig) SnackbarLayout() snackbar.Layout {
	return snackbar.Layout{
		Margins: snackbar.Insets{
			Left:   float64(c.Display.MarginLeft),
			Right:  float64(c.Display.MarginRight),
			Top:    float64(c.Display.MarginTop),
			Bottom: float64(c.Display.MarginBottom),
		},
		MinHeight:       float64(c.Display.MinHeight),
		KeyboardPadding: float64(c.Keyboard.Padding),
	}
}

// SnackbarMotion converts the animation section.
func (c *DaemonConfig) SnackbarMotion() snackbar.Motion {
	return snackbar.Motion{
		Duration:        c.Animation.Duration.Duration(),
		Damping:         c.Animation.Damping,
		InitialVelocity: c.Animation.InitialVelocity,
		FPS:             c.Animation.FPS,
	}
}

// SnackbarOptions returns the lifecycle options every snackbar shown by the
// daemon starts from.
func (c *DaemonConfig) SnackbarOptions() []snackbar.Option {
	return []snackbar.Option{
		snackbar.WithStyle(c.Style()),
		snackbar.WithTiming(c.SnackbarTiming()),
		snackbar.WithLayout(c.SnackbarLayout()),
		snackbar.WithMotion(c.SnackbarMotion()),
		snackbar.WithDismissOnSwipe(c.Behavior.DismissOnSwipe),
		snackbar.WithDismissOnTap(c.Behavior.DismissOnTap),
	}
}

// GetSoundForLevel returns the sound file path for the given level.
// Expands ~ to home directory.
func (c *DaemonConfig) GetSoundForLevel(level string) string {
	var path string
	switch level {
	case "success":
		path = c.Audio.Sounds.Success
	case "warning":
		path = c.Audio.Sounds.Warning
	case "error":
		path = c.Audio.Sounds.Error
	default:
		path = c.Audio.Sounds.Info
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
