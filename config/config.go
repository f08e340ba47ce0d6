package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV"       envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT"      envDefault:"8000"  validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"  validate:"oneof=debug info warn error"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret  string `env:"JWT_SECRET,required" validate:"required,min=32"`
	BcryptCost int    `env:"BCRYPT_COST"         envDefault:"10" validate:"min=10,max=31"`

	StoreDriver   string `env:"STORE_DRIVER"   envDefault:"mongo"     validate:"oneof=mongo postgres"`
	MongoURI      string `env:"MONGO_URI"                              validate:"required_if=StoreDriver mongo"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"travelease"`
	DatabaseURL   string `env:"DATABASE_URL"                           validate:"required_if=StoreDriver postgres"`

	ImageStore     string `env:"IMAGE_STORE"      envDefault:"disk"                  validate:"oneof=disk s3"`
	UploadDir      string `env:"UPLOAD_DIR"       envDefault:"./uploads"`
	AssetsDir      string `env:"ASSETS_DIR"       envDefault:"./assets"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL"  envDefault:"http://localhost:8000" validate:"required,url"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"              validate:"min=1"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION"     envDefault:"us-east-1"`
	S3Bucket    string `env:"S3_BUCKET"     validate:"required_if=ImageStore s3"`
	S3AccessKey string `env:"S3_ACCESS_KEY" validate:"required_if=ImageStore s3"`
	S3SecretKey string `env:"S3_SECRET_KEY" validate:"required_if=ImageStore s3"`
	S3PublicURL string `env:"S3_PUBLIC_URL" validate:"required_if=ImageStore s3"`

	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	MailFrom     string `env:"MAIL_FROM"      validate:"required_if=Env production,required_if=Env staging"`
}

// Load reads an optional .env file, then parses and validates the environment.
// Variables already present in the process environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	cfg.S3PublicURL = strings.TrimRight(cfg.S3PublicURL, "/")

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// PlaceholderImageURL is substituted when a plan is edited without an image.
func (c *Config) PlaceholderImageURL() string {
	return c.PublicBaseURL + "/assets/placeholder.png"
}
