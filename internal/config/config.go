package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendPlaywright = "playwright"
	BackendSelenium   = "selenium"
	BackendRod        = "rod"
)

type Config struct {
	AppConfig    *AppConfig
	DriverConfig *DriverConfig
	WaitConfig   *WaitConfig
	RetryConfig  *RetryConfig
}

type AppConfig struct {
	LogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"APP_DEBUG" default:"false"`
	Tracing  bool   `envconfig:"APP_TRACING" default:"false"`
}

type DriverConfig struct {
	Backend          string `envconfig:"DRIVER_BACKEND" default:"playwright"`
	Browser          string `envconfig:"DRIVER_BROWSER" default:"chromium"`
	Headless         bool   `envconfig:"DRIVER_HEADLESS" default:"true"`
	SlowMo           int    `envconfig:"DRIVER_SLOW_MO" default:"0"`
	RemoteURL        string `envconfig:"DRIVER_REMOTE_URL"`
	ChromeDriverPath string `envconfig:"DRIVER_CHROMEDRIVER_PATH"`
	ChromeDriverPort int    `envconfig:"DRIVER_CHROMEDRIVER_PORT" default:"9515"`
	ViewportWidth    int    `envconfig:"DRIVER_VIEWPORT_WIDTH" default:"1280"`
	ViewportHeight   int    `envconfig:"DRIVER_VIEWPORT_HEIGHT" default:"720"`
}

// WaitConfig values are in seconds, the way test configs usually state them.
type WaitConfig struct {
	ImplicitSeconds int           `envconfig:"WAIT_IMPLICIT" default:"0"`
	ExplicitSeconds int           `envconfig:"WAIT_EXPLICIT" default:"10"`
	PollInterval    time.Duration `envconfig:"WAIT_POLL_INTERVAL" default:"250ms"`
}

type RetryConfig struct {
	MaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"4"`
	Interval    time.Duration `envconfig:"RETRY_INTERVAL" default:"1s"`
}

func (w *WaitConfig) Implicit() time.Duration {
	return time.Duration(w.ImplicitSeconds) * time.Second
}

func (w *WaitConfig) Explicit() time.Duration {
	return time.Duration(w.ExplicitSeconds) * time.Second
}

func GetConfig() (*Config, error) {
	_ = godotenv.Load()

	conf := Config{
		AppConfig:    &AppConfig{},
		DriverConfig: &DriverConfig{},
		WaitConfig:   &WaitConfig{},
		RetryConfig:  &RetryConfig{},
	}

	// Each section is processed on its own so variable names stay unprefixed.
	for _, section := range []any{conf.AppConfig, conf.DriverConfig, conf.WaitConfig, conf.RetryConfig} {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("read config from env vars: %w", err)
		}
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (c *Config) Validate() error {
	switch c.DriverConfig.Backend {
	case BackendPlaywright, BackendSelenium, BackendRod:
	default:
		return fmt.Errorf("unsupported driver backend %q", c.DriverConfig.Backend)
	}

	if c.RetryConfig.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.RetryConfig.MaxAttempts)
	}

	if c.RetryConfig.Interval < 0 {
		return fmt.Errorf("retry interval must not be negative")
	}

	if c.WaitConfig.ExplicitSeconds < 0 || c.WaitConfig.ImplicitSeconds < 0 {
		return fmt.Errorf("wait seconds must not be negative")
	}

	if c.WaitConfig.PollInterval <= 0 {
		return fmt.Errorf("wait poll interval must be positive")
	}

	return nil
}
