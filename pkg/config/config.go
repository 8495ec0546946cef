// Package config loads nin's configuration.
//
// Precedence, lowest to highest: built-in defaults, the YAML file
// (~/.config/nin/config.yaml unless a path is given), NIN_* environment
// variables, then explicit overrides such as command-line flags. A .env file
// in the working directory is read into the environment first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"

	"github.com/unowned-ai/nin/pkg/utils"
)

const (
	EnvPrefix = "NIN_"

	maxConfigFileSize = 1024 * 1024
)

type Config struct {
	Store     StoreConfig     `koanf:"store"`
	Keys      KeysConfig      `koanf:"keys"`
	Folders   FoldersConfig   `koanf:"folders"`
	Reminders RemindersConfig `koanf:"reminders"`
	Log       LogConfig       `koanf:"log"`
}

// StoreConfig picks the key-value backend and its connection settings.
type StoreConfig struct {
	Driver        string `koanf:"driver"`
	Path          string `koanf:"path"`
	WAL           bool   `koanf:"wal"`
	Sync          string `koanf:"sync"`
	PostgresDSN   string `koanf:"postgres_dsn"`
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`
}

// KeysConfig names the storage keys. NotesTemplate must contain "{title}".
type KeysConfig struct {
	Folders       string `koanf:"folders"`
	NotesTemplate string `koanf:"notes_template"`
	TopLevelNotes string `koanf:"top_level_notes"`
	Reminders     string `koanf:"reminders"`
}

type FoldersConfig struct {
	DefaultTitle string `koanf:"default_title"`
}

type RemindersConfig struct {
	Permission   string        `koanf:"permission"`
	Timezone     string        `koanf:"timezone"`
	PollInterval time.Duration `koanf:"poll_interval"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Defaults returns the built-in configuration as koanf key paths.
func Defaults() map[string]any {
	return map[string]any{
		"store.driver":            "sqlite",
		"store.path":              utils.DefaultDBPath(),
		"store.wal":               true,
		"store.sync":              "NORMAL",
		"store.mongo_database":    "nin",
		"keys.folders":            "folders",
		"keys.notes_template":     "{title}_notes",
		"keys.top_level_notes":    "notes",
		"keys.reminders":          "reminders",
		"folders.default_title":   "Geral",
		"reminders.permission":    "granted",
		"reminders.timezone":      "Local",
		"reminders.poll_interval": 5 * time.Second,
		"log.level":               "info",
		"log.format":              "console",
	}
}

// Options tells Load where to look.
type Options struct {
	// Path is the YAML file. When empty the default path is used and a
	// missing file is not an error.
	Path string
	// DotEnv lists .env files to load; nil means ".env" if it exists.
	DotEnv []string
	// Overrides are applied last, keyed like "store.driver".
	Overrides map[string]any
}

// Load builds a Config from every source and validates it.
func Load(opts Options) (*Config, error) {
	if err := loadDotEnv(opts.DotEnv); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	for key, val := range Defaults() {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		path = utils.DefaultConfigPath()
	}
	content, err := readConfigFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, err
	default:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, val := range opts.Overrides {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("failed to apply override %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envKey maps NIN_STORE_POSTGRES_DSN to store.postgres_dsn: the first
// segment after the prefix is the section, the rest is the field name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

func loadDotEnv(files []string) error {
	if files == nil {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func readConfigFile(path string) ([]byte, error) {
	path, err := utils.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// Validate checks enumerations and that the chosen backend has what it needs.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return errors.New("store.postgres_dsn is required for the postgres driver")
		}
	case "mongo":
		if c.Store.MongoURI == "" {
			return errors.New("store.mongo_uri is required for the mongo driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store.driver %q (must be sqlite, postgres, mongo or memory)", c.Store.Driver)
	}

	if err := c.Keys.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Folders.DefaultTitle) == "" {
		return errors.New("folders.default_title cannot be empty")
	}

	switch c.Reminders.Permission {
	case "granted", "denied", "undetermined":
	default:
		return fmt.Errorf("invalid reminders.permission %q", c.Reminders.Permission)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Reminders.PollInterval <= 0 {
		return fmt.Errorf("reminders.poll_interval must be positive, got %s", c.Reminders.PollInterval)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log.format %q (must be json or console)", c.Log.Format)
	}
	return nil
}

// validate makes sure no folder title can turn the notes template into one
// of the fixed keys, and that the fixed keys are distinct.
func (k KeysConfig) validate() error {
	const placeholder = "{title}"
	if strings.Count(k.NotesTemplate, placeholder) != 1 {
		return fmt.Errorf("keys.notes_template %q must contain {title} exactly once", k.NotesTemplate)
	}
	if k.NotesTemplate == placeholder {
		return fmt.Errorf("keys.notes_template %q needs a fixed prefix or suffix around {title}", k.NotesTemplate)
	}
	prefix, suffix, _ := strings.Cut(k.NotesTemplate, placeholder)

	fixed := map[string]string{
		"keys.folders":         k.Folders,
		"keys.top_level_notes": k.TopLevelNotes,
		"keys.reminders":       k.Reminders,
	}
	seen := map[string]string{}
	for _, name := range []string{"keys.folders", "keys.top_level_notes", "keys.reminders"} {
		key := fixed[name]
		if key == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
		if other, ok := seen[key]; ok {
			return fmt.Errorf("%s and %s are both %q", other, name, key)
		}
		seen[key] = name
		if len(key) > len(prefix)+len(suffix) && strings.HasPrefix(key, prefix) && strings.HasSuffix(key, suffix) {
			return fmt.Errorf("keys.notes_template %q can produce %s %q", k.NotesTemplate, name, key)
		}
	}
	return nil
}

// Location resolves reminders.timezone. "Local" and "" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Reminders.Timezone == "" || c.Reminders.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Reminders.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reminders.timezone %q: %w", c.Reminders.Timezone, err)
	}
	return loc, nil
}
