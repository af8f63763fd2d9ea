package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected
// default values. Changes to defaults should be intentional; this test
// serves as living documentation of them.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default TotalSites is 1000", func(t *testing.T) {
		t.Parallel()
		if cfg.TotalSites != 1000 {
			t.Errorf("expected TotalSites to be 1000, got %d", cfg.TotalSites)
		}
	})

	t.Run("default BatchSize is 50", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 50 {
			t.Errorf("expected BatchSize to be 50, got %d", cfg.BatchSize)
		}
	})

	t.Run("default Timeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected Timeout to be 10s, got %v", cfg.Timeout)
		}
	})

	t.Run("default MaxBodySize is 5MB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxBodySize != 5*1024*1024 {
			t.Errorf("expected MaxBodySize to be 5MB, got %d", cfg.MaxBodySize)
		}
	})

	t.Run("default UserAgent looks like a browser", func(t *testing.T) {
		t.Parallel()
		if cfg.UserAgent == "" {
			t.Error("expected non-empty default UserAgent")
		}
	})

	t.Run("default CacheDir is under XDG cache home", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheDir == "" {
			t.Error("expected non-empty default CacheDir")
		}
		if filepath.Base(cfg.CacheDir) != AppName {
			t.Errorf("expected CacheDir to end with %q, got %q", AppName, cfg.CacheDir)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each case exercises exactly one validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests modify specific fields to trigger validation rules.
	validConfig := func() *Config {
		return &Config{
			TotalSites: 1000,
			BatchSize:  50,
			Timeout:    10 * time.Second,
		}
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()

		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("zero total sites", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.TotalSites = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTotalSites) {
			t.Errorf("expected ErrInvalidTotalSites, got %v", err)
		}
	})

	t.Run("zero batch size", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.BatchSize = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidBatchSize) {
			t.Errorf("expected ErrInvalidBatchSize, got %v", err)
		}
	})

	t.Run("zero timeout", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.Timeout = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("negative max body size", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.MaxBodySize = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxBodySize) {
			t.Errorf("expected ErrInvalidMaxBodySize, got %v", err)
		}
	})

	t.Run("negative rate limit", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.RequestsPerSecond = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidRateLimit) {
			t.Errorf("expected ErrInvalidRateLimit, got %v", err)
		}
	})

	t.Run("conflicting report formats", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = true
		if err := cfg.Validate(); !errors.Is(err, ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}

// TestLoadConfigFile tests YAML config file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads valid config file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		content := `accessKeyId: AKIAEXAMPLE
secretKey: supersecret
totalSites: 200
batchSize: 20
timeoutSeconds: 5
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile failed: %v", err)
		}

		if cf.AccessKeyID != "AKIAEXAMPLE" {
			t.Errorf("expected access key id AKIAEXAMPLE, got %q", cf.AccessKeyID)
		}
		if cf.TotalSites != 200 {
			t.Errorf("expected totalSites 200, got %d", cf.TotalSites)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("totalSites: [not a number"), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

// TestFileApply tests merging file settings into a config.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("non-zero values override defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cf := &File{
			SecretKey:      "s3cret",
			BatchSize:      25,
			TimeoutSeconds: 30,
		}
		cf.Apply(cfg)

		if cfg.SecretKey != "s3cret" {
			t.Errorf("expected secret key applied, got %q", cfg.SecretKey)
		}
		if cfg.BatchSize != 25 {
			t.Errorf("expected batch size 25, got %d", cfg.BatchSize)
		}
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected timeout 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("zero values leave defaults untouched", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		(&File{}).Apply(cfg)

		if cfg.TotalSites != DefaultTotalSites {
			t.Errorf("expected default total sites, got %d", cfg.TotalSites)
		}
		if cfg.Timeout != DefaultTimeout {
			t.Errorf("expected default timeout, got %v", cfg.Timeout)
		}
	})
}
