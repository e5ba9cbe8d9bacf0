package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	BotToken    string `env:"BOT_TOKEN,required,notEmpty"`
	BotDebug    bool   `env:"BOT_DEBUG" envDefault:"false"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8000"`
	Port     string `env:"PORT" envDefault:"8000"`
	MediaDir string `env:"MEDIA_DIR" envDefault:"./media"`

	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"15m"`
	DownloadTimeout time.Duration `env:"DOWNLOAD_TIMEOUT" envDefault:"30s"`
	MaxMediaBytes   int64         `env:"MAX_MEDIA_BYTES" envDefault:"20971520"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	MetricsToken string `env:"METRICS_TOKEN"`
	QRCaption    string `env:"QR_CAPTION" envDefault:"QR Code Generator Bot"`
}

// Load parses the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("DOWNLOAD_TIMEOUT must be positive"))
	}
	if c.MaxMediaBytes <= 0 {
		errs = append(errs, errors.New("MAX_MEDIA_BYTES must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("BASE_URL must not be empty"))
	}
	return errors.Join(errs...)
}

func (c Config) PageURL(pageID string) string {
	return c.BaseURL + "/page/" + pageID
}
