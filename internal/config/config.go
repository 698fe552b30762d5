package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/ilkin0/metadata-api/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Workers caps concurrently served requests; Backlog is how many more may
	// wait for a slot.
	Workers int
	Backlog int

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	KeepAlive       time.Duration

	MaxUploadBytes     int64
	CORSAllowedOrigins []string
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return Parse(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "10000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("WORKERS", defaultWorkers())
	v.SetDefault("BACKLOG", 2048)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 30)
	v.SetDefault("KEEPALIVE_SECONDS", 5)
	v.SetDefault("MAX_UPLOAD_MB", 50)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// defaultWorkers is 2*CPU+1, capped at 4.
func defaultWorkers() int {
	return min(runtime.NumCPU()*2+1, 4)
}

func Parse(v *viper.Viper) (*Config, error) {
	env := v.GetString("APP_ENV")
	level := v.GetString("LOG_LEVEL")
	if level == "" {
		level = logger.DefaultLevel(env)
	}

	cfg := &Config{
		Port:               v.GetString("PORT"),
		Env:                env,
		LogLevel:           level,
		Workers:            v.GetInt("WORKERS"),
		Backlog:            v.GetInt("BACKLOG"),
		RequestTimeout:     time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		ShutdownTimeout:    time.Duration(v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")) * time.Second,
		KeepAlive:          time.Duration(v.GetInt("KEEPALIVE_SECONDS")) * time.Second,
		MaxUploadBytes:     v.GetInt64("MAX_UPLOAD_MB") << 20,
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	if c.Backlog < 0 {
		return fmt.Errorf("BACKLOG must not be negative, got %d", c.Backlog)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
