package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the original analyzer's behavior where applicable.
const (
	// DefaultTotalSites is the number of ranked domains to scan.
	// 1000 matches the ranking source's useful depth; deeper entries are
	// increasingly unstable day to day.
	DefaultTotalSites = 1000

	// DefaultBatchSize is the number of concurrent fetches per batch.
	// Unbounded concurrency across the whole list exhausts connections
	// and inflates tail latency; 50 trades wall-clock time for stable,
	// predictable resource use.
	DefaultBatchSize = 50

	// DefaultTimeout is the per-request fetch timeout. Landing pages of
	// popular domains normally answer well within 10 seconds; anything
	// slower is recorded as a failure rather than stalling its batch.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent mimics a mainstream browser. Many large sites
	// serve reduced or interstitial pages to clients with tool-like
	// User-Agents, which would skew word counts.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

	// DefaultMaxBodySize limits how much of a landing page is read.
	// 5MB covers any real HTML document while preventing memory
	// exhaustion from unexpected payloads.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "topsites"
)

// Config holds all options for one analyzer run.
// It is populated from CLI flags plus an optional config file and passed
// through the application by dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested sub-configs
// because the option count is manageable; nesting would add indirection
// without benefit.
type Config struct {
	// TotalSites is the number of top-ranked domains to scan.
	// It is also the denominator for the average word count, so runs with
	// different failure rates stay comparable.
	TotalSites int

	// BatchSize is the number of sites fetched concurrently per batch.
	// Batches run strictly in sequence; this caps peak in-flight requests.
	BatchSize int

	// Timeout bounds each individual site fetch. It applies per request,
	// not to the run as a whole.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every fetch.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Zero means use DefaultMaxBodySize.
	MaxBodySize int64

	// RequestsPerSecond optionally throttles fetch launches within a
	// batch. Zero means no throttling beyond the batch bound itself.
	RequestsPerSecond float64

	// AccessKeyID and SecretKey authenticate against the ranking source.
	// The source bills per query, which is why results are cached daily.
	AccessKeyID string
	SecretKey   string

	// CacheDir is where the daily domain-list cache file lives.
	// Empty means the XDG cache directory for this application.
	CacheDir string

	// ConfigFilePath is an explicit config file path. If empty, the tool
	// searches for .topsites in the current directory and then the home
	// directory.
	ConfigFilePath string

	// Verbose enables slog.LevelDebug output. When false, only warnings
	// and errors are logged.
	Verbose bool

	// JSONReport selects JSON report output instead of the human-readable
	// summary. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ExcelFile, when set, additionally exports the report as an .xlsx
	// workbook at this path.
	ExcelFile string

	// ReportFile, when set, writes the report to this file instead of
	// stdout. Parent directories are created as needed.
	ReportFile string
}

// NewConfig creates a Config with default values.
// Many defaults are non-zero, so relying on zero values is not an option;
// the constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		TotalSites:  DefaultTotalSites,
		BatchSize:   DefaultBatchSize,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		CacheDir:    XDGCacheDir(),
	}
}

// XDGCacheDir returns the XDG cache directory for the analyzer.
// On Linux: ~/.cache/topsites
// On macOS: ~/Library/Caches/topsites
// On Windows: %LOCALAPPDATA%\topsites\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks whether the configuration is usable.
// It returns the first problem found; fixing one often makes others
// irrelevant, so collecting all errors is not worth the complexity.
// This is called once after CLI parsing, before any scanning begins.
func (c *Config) Validate() error {
	if c.TotalSites <= 0 {
		return ErrInvalidTotalSites
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.RequestsPerSecond < 0 {
		return ErrInvalidRateLimit
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
