package config

import (
	"os"
	"testing"
	"time"
)

func TestGetConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	conf, err := GetConfig()
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}

	if conf.DriverConfig.Backend != BackendPlaywright {
		t.Errorf("Backend = %s, want %s", conf.DriverConfig.Backend, BackendPlaywright)
	}
	if conf.RetryConfig.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d, want 4", conf.RetryConfig.MaxAttempts)
	}
	if conf.RetryConfig.Interval != time.Second {
		t.Errorf("Interval = %v, want 1s", conf.RetryConfig.Interval)
	}
	if conf.WaitConfig.Explicit() != 10*time.Second {
		t.Errorf("Explicit() = %v, want 10s", conf.WaitConfig.Explicit())
	}
	if conf.WaitConfig.Implicit() != 0 {
		t.Errorf("Implicit() = %v, want 0", conf.WaitConfig.Implicit())
	}
}

func TestGetConfig_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DRIVER_BACKEND", "selenium")
	t.Setenv("RETRY_MAX_ATTEMPTS", "2")
	t.Setenv("RETRY_INTERVAL", "50ms")
	t.Setenv("WAIT_EXPLICIT", "3")

	conf, err := GetConfig()
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}

	if conf.DriverConfig.Backend != BackendSelenium {
		t.Errorf("Backend = %s, want selenium", conf.DriverConfig.Backend)
	}
	if conf.RetryConfig.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %d, want 2", conf.RetryConfig.MaxAttempts)
	}
	if conf.RetryConfig.Interval != 50*time.Millisecond {
		t.Errorf("Interval = %v, want 50ms", conf.RetryConfig.Interval)
	}
	if conf.WaitConfig.Explicit() != 3*time.Second {
		t.Errorf("Explicit() = %v, want 3s", conf.WaitConfig.Explicit())
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AppConfig:    &AppConfig{},
			DriverConfig: &DriverConfig{Backend: BackendRod},
			WaitConfig:   &WaitConfig{ExplicitSeconds: 1, PollInterval: time.Millisecond},
			RetryConfig:  &RetryConfig{MaxAttempts: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.DriverConfig.Backend = "webkit-remote" }, true},
		{"zero attempts", func(c *Config) { c.RetryConfig.MaxAttempts = 0 }, true},
		{"negative interval", func(c *Config) { c.RetryConfig.Interval = -time.Second }, true},
		{"negative wait", func(c *Config) { c.WaitConfig.ExplicitSeconds = -1 }, true},
		{"zero poll", func(c *Config) { c.WaitConfig.PollInterval = 0 }, true},
	}

	for _, tt := range tests {
		c := valid()
		tt.mutate(c)
		err := c.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

// chdir stands in for t.Chdir (Go 1.24): it changes the working directory
// and restores the previous one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%s) error = %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore Chdir(%s) error = %v", prev, err)
		}
	})
}
