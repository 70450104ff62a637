// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"clipstream/internal/httputil"
	"clipstream/internal/source/reddit"
	"clipstream/internal/source/tiktok"
)

const appName = "clipstream"

// Config holds all application configuration.
type Config struct {
	Player      string `toml:"player"`
	DownloadDir string `toml:"download_dir"`
	History     bool   `toml:"history"`
	Debug       bool   `toml:"debug"`
	LogLevel    string `toml:"log_level"`
	UserAgent   string `toml:"user_agent"`
	Fingerprint bool   `toml:"fingerprint"`
	RedditAPI   string `toml:"reddit_api"`
	TikTokAPI   string `toml:"tiktok_api"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Player:      "mpv",
		DownloadDir: "~/Videos/clipstream",
		History:     true,
		Debug:       false,
		LogLevel:    "warn",
		UserAgent:   httputil.DefaultUserAgent,
		Fingerprint: false,
		RedditAPI:   reddit.DefaultAPIURL,
		TikTokAPI:   tiktok.DefaultAPIURL,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	validPlayers := map[string]bool{
		"mpv": true, "vlc": true, "iina": true, "celluloid": true,
	}
	if !validPlayers[strings.ToLower(c.Player)] {
		return fmt.Errorf("unsupported player %q (valid: mpv, vlc, iina, celluloid)", c.Player)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "warning": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("unsupported log level %q (valid: debug, info, warn, error)", c.LogLevel)
	}

	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	for name, api := range map[string]string{"reddit_api": c.RedditAPI, "tiktok_api": c.TikTokAPI} {
		if err := httputil.ValidateURL(api); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

// HTTPOptions returns the client options shared by every source.
func (c *Config) HTTPOptions() httputil.Options {
	return httputil.Options{
		UserAgent:   c.UserAgent,
		Fingerprint: c.Fingerprint,
	}
}

// ExpandDownloadDir resolves ~ in the download directory path.
func (c *Config) ExpandDownloadDir() (string, error) {
	dir := c.DownloadDir
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

// HistoryPath returns the path to the history database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName, "history.db"), nil
}
