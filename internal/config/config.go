// Package config loads zoomreport settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teemow/zoomreport/internal/zoom"
)

const (
	appName = "zoomreport"

	DefaultDays     = 14
	DefaultWorkers  = 1
	DefaultLogLevel = "info"
)

// Environment variables read by FromEnv.
const (
	EnvAccountID    = "ZOOM_ACCOUNT_ID"
	EnvClientID     = "ZOOM_CLIENT_ID"
	EnvClientSecret = "ZOOM_CLIENT_SECRET"
	EnvAPIBaseURL   = "ZOOM_API_BASE_URL"
	EnvTokenURL     = "ZOOM_TOKEN_URL"
	EnvCacheFile    = "ZOOMREPORT_CACHE_FILE"
	EnvLogDir       = "ZOOMREPORT_LOG_DIR"
	EnvLogLevel     = "ZOOMREPORT_LOG_LEVEL"
	EnvTimeout      = "ZOOMREPORT_TIMEOUT"
	EnvDays         = "ZOOMREPORT_DAYS"
	EnvWorkers      = "ZOOMREPORT_WORKERS"
)

// Config holds everything a run needs.
type Config struct {
	AccountID    string `yaml:"account_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	APIBaseURL string `yaml:"api_base_url"`
	TokenURL   string `yaml:"token_url"`

	// CacheFile is where the access token is cached between runs.
	CacheFile string `yaml:"cache_file"`

	// LogDir receives the timestamped diagnostic log (default: current directory).
	LogDir   string `yaml:"log_dir"`
	LogLevel string `yaml:"log_level"`

	// Timeout applies to every outbound request, token exchange included.
	Timeout time.Duration `yaml:"timeout"`

	Days     int `yaml:"days"`
	Workers  int `yaml:"workers"`
	PageSize int `yaml:"page_size"`
}

// Default returns a Config with every optional field set.
func Default() Config {
	return Config{
		APIBaseURL: zoom.DefaultBaseURL,
		TokenURL:   zoom.DefaultTokenURL,
		CacheFile:  DefaultCacheFile(),
		LogDir:     ".",
		LogLevel:   DefaultLogLevel,
		Timeout:    zoom.DefaultTimeout,
		Days:       DefaultDays,
		Workers:    DefaultWorkers,
		PageSize:   zoom.MaxPageSize,
	}
}

// Load reads the defaults, then the YAML file at path, then the environment.
// A missing file is not an error; an empty path means DefaultConfigFile.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.AccountID = getEnvOrDefault(EnvAccountID, c.AccountID)
	c.ClientID = getEnvOrDefault(EnvClientID, c.ClientID)
	c.ClientSecret = getEnvOrDefault(EnvClientSecret, c.ClientSecret)
	c.APIBaseURL = getEnvOrDefault(EnvAPIBaseURL, c.APIBaseURL)
	c.TokenURL = getEnvOrDefault(EnvTokenURL, c.TokenURL)
	c.CacheFile = getEnvOrDefault(EnvCacheFile, c.CacheFile)
	c.LogDir = getEnvOrDefault(EnvLogDir, c.LogDir)
	c.LogLevel = getEnvOrDefault(EnvLogLevel, c.LogLevel)
	c.Days = getEnvIntOrDefault(EnvDays, c.Days)
	c.Workers = getEnvIntOrDefault(EnvWorkers, c.Workers)

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate reports the first problem that would make a run fail.
func (c *Config) Validate() error {
	var missing []string
	if c.AccountID == "" {
		missing = append(missing, EnvAccountID)
	}
	if c.ClientID == "" {
		missing = append(missing, EnvClientID)
	}
	if c.ClientSecret == "" {
		missing = append(missing, EnvClientSecret)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: set %v or the matching config file keys", missing)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", c.Days)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.PageSize < 1 || c.PageSize > zoom.MaxPageSize {
		return fmt.Errorf("page size must be between 1 and %d, got %d", zoom.MaxPageSize, c.PageSize)
	}
	return nil
}

// Credentials returns the OAuth app credentials.
func (c *Config) Credentials() zoom.Credentials {
	return zoom.Credentials{
		AccountID:    c.AccountID,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
	}
}

// String renders the config for logs with the secret masked.
func (c Config) String() string {
	masked := c
	if masked.ClientSecret != "" {
		masked.ClientSecret = "***"
	}
	out, err := yaml.Marshal(masked)
	if err != nil {
		return "<unprintable config>"
	}
	return string(out)
}

// DefaultConfigFile is <user config dir>/zoomreport/config.yaml.
func DefaultConfigFile() string {
	return filepath.Join(userConfigDir(), appName, "config.yaml")
}

// DefaultCacheFile is <user cache dir>/zoomreport/auth_cache.json.
func DefaultCacheFile() string {
	return filepath.Join(userCacheDir(), appName, "auth_cache.json")
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"LOCALAPPDATA", "TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return "."
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func userConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support")
	case "windows":
		if v := os.Getenv("APPDATA"); v != "" {
			return v
		}
		return "."
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".config")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
