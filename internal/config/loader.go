package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".topsites"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .topsites configuration file.
// It mainly exists so the ranking-source credentials don't have to be
// passed on the command line (where they end up in shell history).
type File struct {
	// AccessKeyID is the ranking source access key id.
	AccessKeyID string `yaml:"accessKeyId,omitempty"`

	// SecretKey is the ranking source secret key used for request signing.
	SecretKey string `yaml:"secretKey,omitempty"`

	// TotalSites overrides the default number of sites to scan.
	TotalSites int `yaml:"totalSites,omitempty"`

	// BatchSize overrides the default per-batch concurrency.
	BatchSize int `yaml:"batchSize,omitempty"`

	// TimeoutSeconds overrides the default per-request timeout.
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`

	// UserAgent overrides the default User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// CacheDir overrides the XDG cache directory for the domain list.
	CacheDir string `yaml:"cacheDir,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// decide whether that is fatal based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply copies the file's non-zero settings onto the config.
// CLI flags are applied after this, so flags win over the file.
func (cf *File) Apply(c *Config) {
	if cf.AccessKeyID != "" {
		c.AccessKeyID = cf.AccessKeyID
	}
	if cf.SecretKey != "" {
		c.SecretKey = cf.SecretKey
	}
	if cf.TotalSites > 0 {
		c.TotalSites = cf.TotalSites
	}
	if cf.BatchSize > 0 {
		c.BatchSize = cf.BatchSize
	}
	if cf.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(cf.TimeoutSeconds) * time.Second
	}
	if cf.UserAgent != "" {
		c.UserAgent = cf.UserAgent
	}
	if cf.CacheDir != "" {
		c.CacheDir = cf.CacheDir
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .topsites in the current directory
// 3. Look for .topsites in the user's home directory
//
// Returns the path to the configuration file if found, or empty string.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
