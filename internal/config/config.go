package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeLocal      Mode = "local"
	ModeProduction Mode = "production"
)

type Config struct {
	Mode    Mode   `yaml:"mode"`
	Port    string `yaml:"port"`
	LogMode string `yaml:"log_mode"`

	Line    LineConfig    `yaml:"line"`
	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// LineConfig is handed to the LINE webhook parser and messaging client.
type LineConfig struct {
	ChannelSecret      string `yaml:"channel_secret"`
	ChannelAccessToken string `yaml:"channel_access_token"`
	APIBaseURL         string `yaml:"api_base_url"`
	// DeliveryMode is "reply" (one-shot reply token) or "push" (durable
	// push to the user id).
	DeliveryMode string `yaml:"delivery_mode"`
}

type LLMConfig struct {
	Backend  string `yaml:"backend"` // "mock", "gemini" or "vertex"
	APIKey   string `yaml:"api_key"`
	Project  string `yaml:"project"`
	Location string `yaml:"location"`
	Model    string `yaml:"model"`
}

type StorageConfig struct {
	// Backend is one of memory, file, sqlite, redis, postgres, firestore.
	Backend string `yaml:"backend"`

	Dir        string `yaml:"dir"`
	SQLitePath string `yaml:"sqlite_path"`

	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`

	PostgresDSN string `yaml:"postgres_dsn"`

	GCPProject string `yaml:"gcp_project"`
}

type HTTPConfig struct {
	WebhookRPS          float64 `yaml:"webhook_rps"`
	WebhookBurst        int     `yaml:"webhook_burst"`
	MaxConcurrentEvents int     `yaml:"max_concurrent_events"`
	// AdminToken guards the history endpoint. Empty disables it.
	AdminToken string `yaml:"admin_token"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Mode:    ModeLocal,
		Port:    "5000",
		LogMode: "development",
		Line: LineConfig{
			APIBaseURL:   "https://api.line.me",
			DeliveryMode: "reply",
		},
		LLM: LLMConfig{
			Backend:  "mock",
			Location: "us-central1",
			Model:    "gemini-2.5-flash",
		},
		Storage: StorageConfig{
			Backend:    "memory",
			Dir:        "data",
			SQLitePath: "myvfriend.db",
			RedisAddr:  "localhost:6379",
		},
		HTTP: HTTPConfig{
			WebhookRPS:          20,
			WebhookBurst:        40,
			MaxConcurrentEvents: 8,
		},
	}
}

// Load builds the config from defaults, an optional YAML file at path, a
// .env file in the working directory and the process environment, in that
// order of increasing precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	setString(&c.Port, "PORT")
	setString(&c.LogMode, "MYVF_LOG_MODE")
	if v := os.Getenv("MYVF_MODE"); v != "" {
		switch strings.ToLower(v) {
		case "production", "prod":
			c.Mode = ModeProduction
		default:
			c.Mode = ModeLocal
		}
	}

	setString(&c.Line.ChannelSecret, "LINE_CHANNEL_SECRET")
	setString(&c.Line.ChannelAccessToken, "LINE_CHANNEL_ACCESS_TOKEN")
	setString(&c.Line.APIBaseURL, "MYVF_LINE_API_BASE_URL")
	setString(&c.Line.DeliveryMode, "MYVF_DELIVERY_MODE")

	setString(&c.LLM.Backend, "MYVF_LLM_BACKEND")
	setString(&c.LLM.APIKey, "GEMINI_API_KEY")
	setString(&c.LLM.Project, "MYVF_GCP_PROJECT")
	setString(&c.LLM.Location, "MYVF_GCP_LOCATION")
	setString(&c.LLM.Model, "MYVF_MODEL_NAME")

	setString(&c.Storage.Backend, "MYVF_STORAGE_BACKEND")
	setString(&c.Storage.Dir, "MYVF_STORAGE_DIR")
	setString(&c.Storage.SQLitePath, "MYVF_SQLITE_PATH")
	setString(&c.Storage.RedisAddr, "MYVF_REDIS_ADDR")
	setString(&c.Storage.RedisPassword, "MYVF_REDIS_PASSWORD")
	setString(&c.Storage.PostgresDSN, "MYVF_POSTGRES_DSN")
	setString(&c.Storage.GCPProject, "MYVF_GCP_PROJECT")
	if err := setInt(&c.Storage.RedisDB, "MYVF_REDIS_DB"); err != nil {
		return err
	}
	if v := os.Getenv("MYVF_REDIS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MYVF_REDIS_TTL: %w", err)
		}
		c.Storage.RedisTTL = d
	}

	setString(&c.HTTP.AdminToken, "MYVF_ADMIN_TOKEN")
	if err := setInt(&c.HTTP.WebhookBurst, "MYVF_WEBHOOK_BURST"); err != nil {
		return err
	}
	if err := setInt(&c.HTTP.MaxConcurrentEvents, "MYVF_MAX_CONCURRENT_EVENTS"); err != nil {
		return err
	}
	if v := os.Getenv("MYVF_WEBHOOK_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MYVF_WEBHOOK_RPS: %w", err)
		}
		c.HTTP.WebhookRPS = f
	}
	return nil
}

// Validate checks that every selected backend has what it needs.
func (c *Config) Validate() error {
	var errs []error

	if c.Mode == ModeProduction {
		if c.Line.ChannelSecret == "" {
			errs = append(errs, errors.New("LINE_CHANNEL_SECRET must be set in production mode"))
		}
		if c.Line.ChannelAccessToken == "" {
			errs = append(errs, errors.New("LINE_CHANNEL_ACCESS_TOKEN must be set in production mode"))
		}
	}

	switch c.Line.DeliveryMode {
	case "reply", "push":
	default:
		errs = append(errs, fmt.Errorf("unknown delivery mode %q", c.Line.DeliveryMode))
	}

	switch c.LLM.Backend {
	case "mock":
	case "gemini":
		if c.LLM.APIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini backend"))
		}
	case "vertex":
		if c.LLM.Project == "" || c.LLM.Location == "" {
			errs = append(errs, errors.New("MYVF_GCP_PROJECT and MYVF_GCP_LOCATION are required for the vertex backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm backend %q", c.LLM.Backend))
	}

	switch c.Storage.Backend {
	case "memory":
	case "file":
		if c.Storage.Dir == "" {
			errs = append(errs, errors.New("MYVF_STORAGE_DIR is required for the file backend"))
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("MYVF_SQLITE_PATH is required for the sqlite backend"))
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("MYVF_REDIS_ADDR is required for the redis backend"))
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("MYVF_POSTGRES_DSN is required for the postgres backend"))
		}
	case "firestore":
		if c.Storage.GCPProject == "" {
			errs = append(errs, errors.New("MYVF_GCP_PROJECT is required for the firestore backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	if c.HTTP.MaxConcurrentEvents <= 0 {
		errs = append(errs, errors.New("max concurrent events must be positive"))
	}

	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = i
	return nil
}
