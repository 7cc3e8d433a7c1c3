// Package config defines Mindguard's configuration: user-facing assist
// settings plus runtime options for detection, content, and logging.
// Settings are advisory inputs; out-of-range numeric values are clamped
// to their documented bounds rather than rejected.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Mode selects the assist behavior. It governs which question pool feeds
// challenges and whether intervention scheduling runs at all.
type Mode string

const (
	// ModeEnhance asks retention and connection questions about the material.
	ModeEnhance Mode = "enhance"
	// ModeProtect asks source-criticism questions (evidence, bias).
	ModeProtect Mode = "protect"
	// ModeFocus asks main-point and key-detail questions.
	ModeFocus Mode = "focus"
	// ModeOff disables all intervention timers and the session clock.
	ModeOff Mode = "off"
)

// Modes returns all valid assist modes.
func Modes() []Mode {
	return []Mode{ModeEnhance, ModeProtect, ModeFocus, ModeOff}
}

// IsValid reports whether m is one of the defined assist modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeEnhance, ModeProtect, ModeFocus, ModeOff:
		return true
	}
	return false
}

// Setting bounds. Values outside these ranges are clamped, never rejected.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
	MinFrequency  = 1
	MaxFrequency  = 10
	MinDirectness = 1
	MaxDirectness = 5
)

// Settings holds the user-chosen assist settings. They may be mutated at any
// time from outside the core; every change must reach the scheduler so its
// timers are cancelled and restarted.
type Settings struct {
	// Active is the master switch. When false no timers run.
	Active bool `mapstructure:"active"`
	// Mode is the assist mode (enhance, protect, focus, off).
	Mode Mode `mapstructure:"mode"`
	// Difficulty shortens the challenge countdown (1-5).
	Difficulty int `mapstructure:"difficulty"`
	// Frequency shortens the intervention periods (1-10).
	Frequency int `mapstructure:"frequency"`
	// Directness controls how direct the guided chat replies are (1-5).
	// It is consumed by the chat collaborator, never computed here.
	Directness int `mapstructure:"directness"`
}

// Clamp returns a copy of s with all numeric settings forced into their
// documented bounds and an invalid mode replaced by the enhance default.
func (s Settings) Clamp() Settings {
	s.Difficulty = clampInt(s.Difficulty, MinDifficulty, MaxDifficulty)
	s.Frequency = clampInt(s.Frequency, MinFrequency, MaxFrequency)
	s.Directness = clampInt(s.Directness, MinDirectness, MaxDirectness)
	if !s.Mode.IsValid() {
		s.Mode = ModeEnhance
	}
	return s
}

// Enabled reports whether intervention scheduling should run at all.
func (s Settings) Enabled() bool {
	return s.Active && s.Mode != ModeOff
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Config represents the complete Mindguard configuration.
type Config struct {
	Assist    Settings        `mapstructure:"assist"`
	Detection DetectionConfig `mapstructure:"detection"`
	Content   ContentConfig   `mapstructure:"content"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DetectionConfig controls the detection watcher.
type DetectionConfig struct {
	// PollIntervalMs is how often the page is re-scanned (in milliseconds).
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
}

// PollInterval returns the poll interval as a time.Duration.
func (d *DetectionConfig) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalMs) * time.Millisecond
}

// ContentConfig controls where intervention content comes from.
type ContentConfig struct {
	// PackFile is an optional YAML content pack merged over the built-in
	// question pools and canned responses. Empty means built-ins only.
	PackFile string `mapstructure:"pack_file"`
}

// LoggingConfig controls debug logging behavior.
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "DEBUG", "INFO", "WARN", "ERROR" (default: "INFO")
	Level string `mapstructure:"level"`
	// Dir is the directory for log files. Empty means stderr.
	Dir string `mapstructure:"dir"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Assist: Settings{
			Active:     true,
			Mode:       ModeEnhance,
			Difficulty: 3,
			Frequency:  5,
			Directness: 3,
		},
		Detection: DetectionConfig{
			PollIntervalMs: 3000,
		},
		Content: ContentConfig{
			PackFile: "",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "INFO",
			Dir:     "",
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("assist.active", defaults.Assist.Active)
	viper.SetDefault("assist.mode", string(defaults.Assist.Mode))
	viper.SetDefault("assist.difficulty", defaults.Assist.Difficulty)
	viper.SetDefault("assist.frequency", defaults.Assist.Frequency)
	viper.SetDefault("assist.directness", defaults.Assist.Directness)

	viper.SetDefault("detection.poll_interval_ms", defaults.Detection.PollIntervalMs)

	viper.SetDefault("content.pack_file", defaults.Content.PackFile)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct,
// normalizes the assist settings, and validates the rest.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Assist = cfg.Assist.Clamp()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function).
// Falls back to defaults if loading fails.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mindguard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mindguard"
	}
	return filepath.Join(home, ".config", "mindguard")
}

// ConfigFile returns the path to the config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
