// Package config loads vectorlib's runtime configuration: server address,
// logging, the default index strategy assigned to libraries created
// without an explicit one, snapshot storage, and the search cache size.
//
// Precedence (lowest to highest): built-in defaults, vectorlib.yaml in the
// directory passed to Load, then VECTORLIB_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/vectorlib/internal/entity"
)

// Config is the complete vectorlib configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" json:"server"`
	Storage     StorageConfig     `yaml:"storage" json:"storage"`
	DefaultIndex entity.IndexConfig `yaml:"default_index" json:"default_index"`
	SearchCache SearchCacheConfig `yaml:"search_cache" json:"search_cache"`
}

// ServerConfig configures the HTTP transport adapter.
type ServerConfig struct {
	Address  string `yaml:"address" json:"address"`
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogFile, when set, routes server logs through internal/vlog's
	// rotating file writer instead of plain stderr JSON. Empty keeps the
	// stderr-only behavior most CLI subcommands want.
	LogFile string `yaml:"log_file" json:"log_file"`
}

// StorageConfig configures the optional JSON snapshot.
type StorageConfig struct {
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path"`
}

// SearchCacheConfig configures the version-keyed LRU search result cache.
type SearchCacheConfig struct {
	Size int `yaml:"size" json:"size"`
}

// DefaultConfigFileName is the project-local config file vectorlib looks for.
const DefaultConfigFileName = "vectorlib.yaml"

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:  ":8080",
			LogLevel: "info",
		},
		Storage: StorageConfig{
			SnapshotPath: filepath.Join(".vectorlib", "snapshot.json"),
		},
		DefaultIndex: entity.IndexConfig{Type: entity.IndexFlat},
		SearchCache: SearchCacheConfig{Size: 1024},
	}
}

// Load builds the effective configuration for dir: defaults, then
// dir/vectorlib.yaml if present, then VECTORLIB_* environment overrides.
func Load(dir string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile merges dir/vectorlib.yaml into cfg if the file exists.
// A missing file is not an error; defaults apply instead.
func (c *Config) loadFromFile(dir string) error {
	path := filepath.Join(dir, DefaultConfigFileName)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return c.loadYAML(path)
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Server.Address != "" {
		c.Server.Address = other.Server.Address
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
	if other.Server.LogFile != "" {
		c.Server.LogFile = other.Server.LogFile
	}
	if other.Storage.SnapshotPath != "" {
		c.Storage.SnapshotPath = other.Storage.SnapshotPath
	}
	if other.DefaultIndex.Type != "" {
		c.DefaultIndex = other.DefaultIndex
	}
	if other.SearchCache.Size != 0 {
		c.SearchCache.Size = other.SearchCache.Size
	}
}

// applyEnvOverrides applies VECTORLIB_* environment variables, the
// highest-precedence configuration layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("VECTORLIB_ADDRESS"); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv("VECTORLIB_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("VECTORLIB_LOG_FILE"); v != "" {
		c.Server.LogFile = v
	}
	if v := os.Getenv("VECTORLIB_SNAPSHOT_PATH"); v != "" {
		c.Storage.SnapshotPath = v
	}
	if v := os.Getenv("VECTORLIB_SEARCH_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.SearchCache.Size = n
		}
	}
}

// Validate checks the configuration for internally consistent values.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.SearchCache.Size < 0 {
		return fmt.Errorf("search_cache.size must not be negative")
	}
	if err := c.DefaultIndex.Validate(); err != nil {
		return fmt.Errorf("default_index: %w", err)
	}
	return nil
}

// WriteYAML writes the configuration to path, creating parent directories
// as needed.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
