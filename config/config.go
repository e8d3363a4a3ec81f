package config

import (
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server settings
	ServerPort      string        `yaml:"server_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Debug           bool          `yaml:"debug"`
	Version         string        `yaml:"version"`

	Log        LogConfig        `yaml:"log"`
	CORS       CORSConfig       `yaml:"cors"`
	Journal    JournalConfig    `yaml:"journal"`
	Transcript TranscriptConfig `yaml:"transcript"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
}

type LogConfig struct {
	Dir    string `yaml:"dir"`
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// JournalConfig controls the request journal. An empty Path disables it.
type JournalConfig struct {
	Path string `yaml:"path"`
}

type TranscriptConfig struct {
	ProviderTimeout   time.Duration `yaml:"provider_timeout"`
	IncludeTimestamps bool          `yaml:"include_timestamps"`
	HighlightMaxChars int           `yaml:"highlight_max_chars"`
	AllowedHosts      []string      `yaml:"allowed_hosts"`
}

type YouTubeConfig struct {
	BaseURL           string   `yaml:"base_url"`
	Languages         []string `yaml:"languages"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
}

func defaultConfig() *Config {
	return &Config{
		ServerPort:      "8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Version:         "1.0.0",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		CORS: CORSConfig{
			Enabled:        false,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         86400,
		},
		Transcript: TranscriptConfig{
			ProviderTimeout:   10 * time.Second,
			HighlightMaxChars: 3000,
		},
		YouTube: YouTubeConfig{
			BaseURL:           "https://www.youtube.com",
			Languages:         []string{"en"},
			RequestsPerSecond: 5,
			Burst:             5,
		},
	}
}

// Load reads .env files, the optional YAML file named by CONFIG_FILE and then
// environment variables, each layer overriding the previous one.
func Load() (*Config, error) {
	if err := loadDotEnv(".env.local", ".env"); err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	if path := GetEnv("CONFIG_FILE", ""); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.Wrapf(err, "failed to load %s", p)
		}
		logrus.WithField("path", p).Debug("Loaded environment file")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = GetEnv("SERVER_PORT", cfg.ServerPort)
	cfg.ReadTimeout = getEnvAsDuration("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getEnvAsDuration("WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = getEnvAsDuration("IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.Debug = getEnvAsBool("DEBUG", cfg.Debug)
	cfg.Version = GetEnv("VERSION", cfg.Version)

	cfg.Log.Dir = GetEnv("LOG_DIR", cfg.Log.Dir)
	cfg.Log.Level = GetEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = GetEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.CORS.Enabled = getEnvAsBool("CORS_ENABLED", cfg.CORS.Enabled)
	cfg.CORS.AllowedOrigins = getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", cfg.CORS.AllowedOrigins)
	cfg.CORS.AllowedMethods = getEnvAsStringSlice("CORS_ALLOWED_METHODS", cfg.CORS.AllowedMethods)
	cfg.CORS.AllowedHeaders = getEnvAsStringSlice("CORS_ALLOWED_HEADERS", cfg.CORS.AllowedHeaders)
	cfg.CORS.MaxAge = getEnvAsInt("CORS_MAX_AGE", cfg.CORS.MaxAge)

	cfg.Journal.Path = GetEnv("JOURNAL_PATH", cfg.Journal.Path)

	cfg.Transcript.ProviderTimeout = getEnvAsDuration("PROVIDER_TIMEOUT", cfg.Transcript.ProviderTimeout)
	cfg.Transcript.IncludeTimestamps = getEnvAsBool("INCLUDE_TIMESTAMPS", cfg.Transcript.IncludeTimestamps)
	cfg.Transcript.HighlightMaxChars = getEnvAsInt("HIGHLIGHT_MAX_CHARS", cfg.Transcript.HighlightMaxChars)
	cfg.Transcript.AllowedHosts = getEnvAsStringSlice("ALLOWED_HOSTS", cfg.Transcript.AllowedHosts)

	cfg.YouTube.BaseURL = GetEnv("YOUTUBE_BASE_URL", cfg.YouTube.BaseURL)
	cfg.YouTube.Languages = getEnvAsStringSlice("CAPTION_LANGUAGES", cfg.YouTube.Languages)
	cfg.YouTube.RequestsPerSecond = getEnvAsFloat("PROVIDER_RPS", cfg.YouTube.RequestsPerSecond)
	cfg.YouTube.Burst = getEnvAsInt("PROVIDER_BURST", cfg.YouTube.Burst)
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return errors.New("server port is required")
	}
	if c.ReadTimeout <= 0 {
		return errors.New("read timeout must be greater than 0")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write timeout must be greater than 0")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("idle timeout must be greater than 0")
	}
	if c.Transcript.ProviderTimeout <= 0 {
		return errors.New("provider timeout must be greater than 0")
	}
	if c.Transcript.ProviderTimeout >= c.WriteTimeout {
		return errors.New("provider timeout must be shorter than write timeout")
	}
	if c.Transcript.HighlightMaxChars <= 0 {
		return errors.New("highlight max chars must be greater than 0")
	}
	if c.YouTube.RequestsPerSecond <= 0 {
		return errors.New("provider requests per second must be greater than 0")
	}
	if c.YouTube.Burst <= 0 {
		return errors.New("provider burst must be greater than 0")
	}
	return nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid number, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid boolean, using default")
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return defaultValue
}
