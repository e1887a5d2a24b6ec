package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Auth    AuthConfig    `yaml:"auth,omitempty"`
	Player  PlayerConfig  `yaml:"player,omitempty"`
	Stream  StreamConfig  `yaml:"stream,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// AuthConfig contains AniList authentication settings
type AuthConfig struct {
	Token    string `yaml:"token,omitempty"`
	Username string `yaml:"username,omitempty"`
}

// PlayerConfig contains media player settings
type PlayerConfig struct {
	Path string `yaml:"path,omitempty"` // Path to the mpv binary
	Args string `yaml:"args,omitempty"` // Extra arguments appended to every invocation
}

// StreamConfig contains streaming and source-resolution settings
type StreamConfig struct {
	Quality         string `yaml:"quality,omitempty"`          // "1080", "720", "480"
	TranslationType string `yaml:"translation_type,omitempty"` // "sub", "dub"
	// EpisodeCompleteAt is the watched percentage at which an episode counts
	// as finished for AniList progress updates
	EpisodeCompleteAt int `yaml:"episode_complete_at,omitempty"`
	// SourcePriority is the ordered list of preferred source names tried
	// first when resolving a stream
	SourcePriority []string `yaml:"source_priority,omitempty"`
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty"`
	FilePath string `yaml:"file_path,omitempty"`
}

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties determined at runtime, such as the per-OS log file location
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply environment variable overrides
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// Failing to write the default config is not fatal, the app can still
		// run with in-memory defaults.
		_ = save(cfg, configPath)
	}

	applyDynamicDefaults(cfg)

	fileConfig, err := loadFromDisk(configPath)
	if err != nil {
		return nil, err
	}
	if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
	}

	applyEnvVarOverrides(cfg)

	return cfg, nil
}

// applyDynamicDefaults sets runtime-determined default values for properties
// that haven't been explicitly configured.
func applyDynamicDefaults(cfg *Config) {
	cfg.Logging.FilePath = defaultLogFilePath()
}

// loadFromDisk loads the YAML config from disk and returns the unmarshalled Config
func loadFromDisk(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

func save(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// UpdateConfig reads the existing config, applies the update function, and saves it back to disk
func UpdateConfig(updateFn func(*Config)) error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("unable to determine config file path: %w", err)
	}

	cfg, err := loadFromDisk(configPath)
	if err != nil {
		return fmt.Errorf("error loading config file from disk: %w", err)
	}

	updateFn(cfg)

	return save(cfg, configPath)
}

// ConfigDir returns the directory holding tsugi's config and registry files.
func ConfigDir() (string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(configPath), nil
}

// getConfigPath returns the path to the config file. Uses the environment
// variable override if present, else the OS config location default.
func getConfigPath() (string, error) {
	if configPath := os.Getenv("TSUGI_CONFIG_PATH"); configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "tsugi", "config.yaml"), nil
}

// defaultConfig creates a config with all static default values
func defaultConfig() *Config {
	return &Config{
		Auth: AuthConfig{},
		Player: PlayerConfig{
			Path: "mpv",
		},
		Stream: StreamConfig{
			Quality:           "1080",
			TranslationType:   "sub",
			EpisodeCompleteAt: 85,
			SourcePriority:    []string{"S-mp4", "Luf-mp4", "Luf-Mp4", "Sak", "Default", "Yt-mp4"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultLogFilePath returns the path to the log file using the expected OS
// location defaults.
func defaultLogFilePath() string {
	var basePath string
	homedir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to logging in the current directory if home directory cannot be determined
		return filepath.Join(".", "tsugi.log")
	}

	switch runtime.GOOS {
	case "windows":
		// Windows:  %LOCALAPPDATA%\tsugi\logs
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, "tsugi", "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", "tsugi", "logs")
		}
	case "darwin":
		// macOS:  ~/Library/Logs/tsugi
		basePath = filepath.Join(homedir, "Library", "Logs", "tsugi")
	default:
		// Linux/BSD:  XDG_STATE_HOME
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, "tsugi", "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", "tsugi", "logs")
		}
	}

	if err := os.MkdirAll(basePath, 0700); err != nil {
		return filepath.Join(".", "tsugi.log")
	}
	return filepath.Join(basePath, "tsugi.log")
}
