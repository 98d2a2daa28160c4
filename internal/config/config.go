package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// DefaultFile is the optional dotenv file read before the environment.
const DefaultFile = "config.env"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8080"`
	Env             string        `env:"NODE_ENV" envDefault:"production"`
	MySQLDSN        string        `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/natours?charset=utf8mb4&parseTime=True&loc=UTC"`
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	RedisPass       string        `env:"REDIS_PASSWORD"`
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiresIn    time.Duration `env:"JWT_EXPIRES_IN" envDefault:"2160h"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"12"`
	SwaggerHost     string        `env:"SWAGGER_HOST"`
	AppBaseURL      string        `env:"APP_BASE_URL"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ResetDB         bool          `env:"RESET_DB"`
	Mail            MailConfig    `envPrefix:"EMAIL_"`
}

// MailConfig holds SMTP settings for outgoing mail.
type MailConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"25"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"Natours <hello@natours.io>"`
}

// Load reads the optional dotenv files (DefaultFile when none are given),
// then builds Config from the environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{DefaultFile}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	if cfg.AppBaseURL == "" && !cfg.IsDev() {
		return nil, errors.New("parse config: APP_BASE_URL is required outside development")
	}
	return &cfg, nil
}

// Sanitize applies guardrails to values loaded from env.
func (c *Config) Sanitize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.AppBaseURL = strings.TrimRight(strings.TrimSpace(c.AppBaseURL), "/")
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.JWTExpiresIn <= 0 {
		c.JWTExpiresIn = 90 * 24 * time.Hour
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// LogValue implements slog.LogValuer with secrets removed.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("server_port", c.ServerPort),
		slog.String("env", c.Env),
		slog.String("app_base_url", c.AppBaseURL),
		slog.String("redis_addr", c.RedisAddr),
		slog.Int("redis_db", c.RedisDB),
		slog.Duration("jwt_expires_in", c.JWTExpiresIn),
		slog.Int("bcrypt_cost", c.BcryptCost),
		slog.String("mail_host", c.Mail.Host),
		slog.Int("mail_port", c.Mail.Port),
		slog.Duration("shutdown_timeout", c.ShutdownTimeout),
		slog.Bool("reset_db", c.ResetDB),
	)
}
