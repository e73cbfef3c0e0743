package chimed

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for chimed.
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Player       PlayerConfig       `toml:"player"`
	Library      LibraryConfig      `toml:"library"`
	Playlists    PlaylistsConfig    `toml:"playlists"`
	Intake       IntakeConfig       `toml:"intake"`
	EmbeddedMQTT EmbeddedMQTTConfig `toml:"embedded_mqtt"`
}

// ServerConfig defines shared daemon settings.
type ServerConfig struct {
	Broker    string     `toml:"broker"`
	Identity  string     `toml:"identity"`
	TopicBase string     `toml:"topic_base"`
	LogLevel  string     `toml:"log_level"`
	Auth      AuthConfig `toml:"auth"`
}

// AuthConfig holds MQTT auth credentials.
type AuthConfig struct {
	User string `toml:"user"`
	Pass string `toml:"pass"`
}

// PlayerConfig configures the playback engine.
type PlayerConfig struct {
	Pipeline string `toml:"pipeline"`
	Device   string `toml:"device"`
}

// LibraryConfig configures the local library scan.
type LibraryConfig struct {
	Roots       []string `toml:"roots"`
	IncludeExts []string `toml:"include_exts"`
}

// PlaylistsConfig configures playlist persistence.
type PlaylistsConfig struct {
	StoragePath string `toml:"storage_path"`
	Owner       string `toml:"owner"`
}

// IntakeConfig configures the payload classifier.
type IntakeConfig struct {
	SpotifyLookupBase string `toml:"spotify_lookup_base"`
}

// EmbeddedMQTTConfig configures the embedded MQTT broker.
type EmbeddedMQTTConfig struct {
	Enabled        bool   `toml:"enabled"`
	Listen         string `toml:"listen"`
	AllowAnonymous bool   `toml:"allow_anonymous"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
}

// LoadConfig loads a config file from path.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, err
	}
	if info.IsDir() {
		return Config{}, errors.New("config path is a directory")
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfigPath returns the default config location.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "chime", "chimed.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chime", "chimed.toml"), nil
}

// DefaultDataPath returns the default playlist storage location.
func DefaultDataPath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "chime"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "chime"), nil
}
