// Package config resolves QuestFocus settings from, in increasing priority:
// built-in defaults, a YAML file, a .env file, and the process environment.
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/callisatech-creator/QuestFocus/internal/feedback"
	"github.com/callisatech-creator/QuestFocus/internal/storage"
)

// Environment variable names.
const (
	EnvDBPath          = "QUESTFOCUS_DB"
	EnvTimezone        = "QUESTFOCUS_TIMEZONE"
	EnvLogLevel        = "QUESTFOCUS_LOG_LEVEL"
	EnvLogFile         = "QUESTFOCUS_LOG_FILE"
	EnvFeedbackAPIKey  = "GEMINI_API_KEY"
	EnvFeedbackURL     = "QUESTFOCUS_FEEDBACK_URL"
	EnvFeedbackModel   = "QUESTFOCUS_FEEDBACK_MODEL"
	EnvFeedbackTimeout = "QUESTFOCUS_FEEDBACK_TIMEOUT"
)

// Config holds all application configuration.
type Config struct {
	// SQLite file holding stats, sessions, achievements and the active timer.
	DBPath string `yaml:"db_path"`

	// IANA zone used to decide which calendar day a session belongs to
	// ("" or "Local" means the system zone).
	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-"`

	LogLevel string `yaml:"log_level"`
	// Log destination; empty means stderr.
	LogFile string `yaml:"log_file"`

	Feedback FeedbackConfig `yaml:"feedback"`
}

// FeedbackConfig configures the post-session LLM message.
type FeedbackConfig struct {
	// No key means no request is ever made.
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// Options controls where Load looks for files.
type Options struct {
	// ConfigPath is an explicit YAML file; it must exist when set.
	ConfigPath string
	// EnvFile is loaded if present (default ".env").
	EnvFile string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	dbPath := ".questfocus.db"
	if p, err := storage.DefaultDBPath(); err == nil {
		dbPath = p
	}
	return Config{
		DBPath:   dbPath,
		Timezone: "Local",
		Location: time.Local,
		LogLevel: "warn",
		Feedback: FeedbackConfig{
			BaseURL: feedback.DefaultBaseURL,
			Model:   feedback.DefaultModel,
			Timeout: feedback.DefaultTimeout,
		},
	}
}

// DefaultConfigPath is ~/.questfocus.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".questfocus.yaml")
}

// Load builds the configuration.
func Load(opts Options) (*Config, error) {
	cfg := Defaults()

	path := opts.ConfigPath
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	applyEnv(&cfg)

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.DBPath = getEnv(EnvDBPath, cfg.DBPath)
	cfg.Timezone = getEnv(EnvTimezone, cfg.Timezone)
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)
	cfg.LogFile = getEnv(EnvLogFile, cfg.LogFile)
	cfg.Feedback.APIKey = getEnv(EnvFeedbackAPIKey, cfg.Feedback.APIKey)
	cfg.Feedback.BaseURL = getEnv(EnvFeedbackURL, cfg.Feedback.BaseURL)
	cfg.Feedback.Model = getEnv(EnvFeedbackModel, cfg.Feedback.Model)
	cfg.Feedback.Timeout = getEnvDuration(EnvFeedbackTimeout, cfg.Feedback.Timeout)
}

// Resolve validates cfg and fills derived fields. Call it again after
// changing fields (for example from CLI flags).
func (c *Config) Resolve() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("config: db path is required")
	}
	c.DBPath = expandHome(c.DBPath)
	if c.LogFile != "" {
		c.LogFile = expandHome(c.LogFile)
	}

	loc, err := LoadLocation(c.Timezone)
	if err != nil {
		return err
	}
	c.Location = loc

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Feedback.Timeout <= 0 {
		c.Feedback.Timeout = feedback.DefaultTimeout
	}
	return nil
}

// LoadLocation resolves a timezone name; "" and "Local" mean time.Local.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
