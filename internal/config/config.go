package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Dataset  Dataset  `yaml:"dataset"`
	Database Database `yaml:"database"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
	Feeds    []Feed   `yaml:"feeds"`
	Fetch    Fetch    `yaml:"fetch"`
}

type Dataset struct {
	Path     string `yaml:"path"`
	PageSize int    `yaml:"page_size"`
}

type Database struct {
	Path string `yaml:"path"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// Feed is an RSS/Atom source for `collect`. PublicationType and
// SourceCountry are stamped on every paper from the feed.
type Feed struct {
	URL             string `yaml:"url"`
	Name            string `yaml:"name"`
	PublicationType string `yaml:"publication_type"`
	SourceCountry   string `yaml:"source_country"`
}

type Fetch struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

// ConfigDir returns the XDG config directory for papersearch.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "papersearch")
}

// DataDir returns the XDG data directory for papersearch.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "papersearch")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/papersearch/config.yaml > ./config.yaml.
// It returns "" when no file exists and none was requested; callers then
// run on the built-in defaults.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path yields the
// built-in defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Default returns the configuration described by the embedded default.yaml.
func Default() *Config {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default config: %v", err))
	}
	return cfg
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Dataset: Dataset{
			Path:     "research_data.csv",
			PageSize: 10,
		},
		Server:  Server{Port: 8501},
		Logging: Logging{Level: "info"},
		Fetch: Fetch{
			TimeoutSeconds: 15,
			UserAgent:      "PaperSearch/1.0 (+abstract fetcher)",
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Dataset.PageSize <= 0 {
		return nil, fmt.Errorf("dataset.page_size must be positive, got %d", cfg.Dataset.PageSize)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	for i, f := range cfg.Feeds {
		if f.URL == "" {
			return nil, fmt.Errorf("feeds[%d]: url is required", i)
		}
	}

	return cfg, nil
}

// GetDatabasePath returns the effective SQLite mirror path.
func (c *Config) GetDatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(DataDir(), "papersearch.db")
}

// FetchTimeout returns the HTTP timeout for abstract fetching.
func (c *Config) FetchTimeout() time.Duration {
	if c.Fetch.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
