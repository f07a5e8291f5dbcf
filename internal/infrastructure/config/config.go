// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for lineage configuration.
	DefaultConfigDir = ".lineage"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultTreesFile is the default family tree registry file name.
	DefaultTreesFile = "trees.yaml"
)

// Source formats.
const (
	FormatAuto   = "auto"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatSQLite = "sqlite"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static configuration (read-only after init).
type Config struct {
	Source SourceConfig `yaml:"source,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`
	Render RenderConfig `yaml:"render,omitempty"`
}

// SourceConfig locates the dataset to load.
type SourceConfig struct {
	// Path is a JSON or YAML dataset file, or a SQLite database.
	Path string `yaml:"path,omitempty"`
	// Format is one of auto, json, yaml, sqlite. Auto picks by extension.
	Format string `yaml:"format,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite dataset database.
type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
	// Watch reloads the dataset when the source file changes.
	Watch    bool          `yaml:"watch,omitempty"`
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // console or json
	// File enables a rotated JSON log file in addition to stderr.
	File       string `yaml:"file,omitempty"`
	MaxSize    int    `yaml:"max_size,omitempty"` // megabytes
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAge     int    `yaml:"max_age,omitempty"` // days
	Compress   bool   `yaml:"compress,omitempty"`
}

// RenderConfig holds defaults for the static graph page.
type RenderConfig struct {
	Output string `yaml:"output,omitempty"`
	Title  string `yaml:"title,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Format: FormatAuto,
		},
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     8080,
			Debounce: 500 * time.Millisecond,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
		Render: RenderConfig{
			Output: "family.html",
			Title:  "Family Tree",
		},
	}
}

// Load loads configuration from the .lineage directory in the given path.
// A missing config file is not an error; defaults apply.
func Load(basePath string) (*Config, error) {
	configFile := filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)

	// Start with defaults
	cfg := Default()

	data, err := os.ReadFile(configFile)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Apply environment variable overrides
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if path := os.Getenv("LINEAGE_DATA"); path != "" {
		c.Source.Path = path
	}
	if level := os.Getenv("LINEAGE_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if port := os.Getenv("LINEAGE_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid LINEAGE_PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}
	return nil
}

// DetectFormat resolves FormatAuto from the file extension.
func DetectFormat(path, format string) (string, error) {
	format = strings.ToLower(format)
	if format != "" && format != FormatAuto {
		switch format {
		case FormatJSON, FormatYAML, FormatSQLite:
			return format, nil
		default:
			return "", fmt.Errorf("unsupported source format %q (valid: auto, json, yaml, sqlite)", format)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("cannot detect format of %q (use --source-format)", path)
	}
}

// ConfigDir returns the path to the .lineage config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// TreesFilePath returns the path to the tree registry file.
func TreesFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultTreesFile)
}

// SanitizeTreeName converts a tree name to a safe file name component.
func SanitizeTreeName(name string) string {
	// Convert to lowercase
	name = strings.ToLower(name)

	// Replace spaces and hyphens with underscores
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	// Remove any characters that aren't alphanumeric or underscore
	name = reNonAlphanumeric.ReplaceAllString(name, "")

	// Remove consecutive underscores
	name = reMultipleUnderscores.ReplaceAllString(name, "_")

	// Trim leading/trailing underscores
	name = strings.Trim(name, "_")

	if name == "" {
		return "default"
	}

	return name
}

// SQLitePathForTree returns the SQLite database path for a named tree.
func SQLitePathForTree(basePath, treeName string) string {
	return filepath.Join(basePath, DefaultConfigDir, "trees", SanitizeTreeName(treeName), "lineage.db")
}
