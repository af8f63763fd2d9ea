package source

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/killthrush/alexa-topsites/internal/config"
)

// ErrSourceUnavailable is returned when neither the daily cache nor a live
// query can produce a domain list. No domains means no run: this is the
// one condition fatal to the whole scan.
var ErrSourceUnavailable = errors.New("ranking source unavailable")

// Default client values.
const (
	// DefaultEndpoint is the Top Sites service endpoint.
	DefaultEndpoint = "https://ats.amazonaws.com/"

	// DefaultPageSize is the listing page size. 100 is the service's
	// default and maximum.
	DefaultPageSize = 100

	// cacheFilePattern names the daily cache file. The UTC date key
	// makes the cache self-expiring: a new day simply misses.
	cacheFilePattern = "topsites-%s.json"
)

// Client fetches the ranked domain list, preferring the same-day cache
// over live (billed) queries.
type Client struct {
	httpClient *http.Client

	// endpoint is the service URL; tests point it at a local server.
	endpoint string

	accessKeyID string
	secretKey   string

	// cacheDir holds the daily JSON cache files.
	cacheDir string

	// pageSize is how many domains one listing request returns.
	pageSize int

	logger *slog.Logger

	// now is the clock; injectable so tests control the cache date.
	now func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithEndpoint overrides the service endpoint. Used by tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithCacheDir sets the directory for daily cache files.
func WithCacheDir(dir string) Option {
	return func(c *Client) {
		c.cacheDir = dir
	}
}

// WithPageSize overrides the listing page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock injects the time source. Used by tests to pin the cache date.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a Client authenticated with the given key pair.
func New(accessKeyID, secretKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:    DefaultEndpoint,
		accessKeyID: accessKeyID,
		secretKey:   secretKey,
		cacheDir:    config.XDGCacheDir(),
		pageSize:    DefaultPageSize,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// TopDomains returns up to count top-ranked domains, rank order preserved.
// Within one UTC calendar day the remote service is queried at most once;
// later calls read the cache file. The service may return fewer domains
// than requested; callers must accept whatever count comes back.
func (c *Client) TopDomains(ctx context.Context, count int) ([]string, error) {
	cachePath := c.cachePath()

	if domains, err := c.readCache(cachePath); err == nil {
		c.logger.Info("using cached domain list",
			"path", cachePath,
			"domains", len(domains),
		)
		return trim(domains, count), nil
	} else if !os.IsNotExist(err) {
		// A corrupt or unreadable cache is worth a warning, but the
		// live path can still save the run.
		c.logger.Warn("ignoring unreadable domain cache",
			"path", cachePath,
			"error", err,
		)
	}

	domains, err := c.fetchLive(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, err)
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("%w: listing returned no domains", ErrSourceUnavailable)
	}

	if err := c.writeCache(cachePath, domains); err != nil {
		// Cache write failure costs money tomorrow but not correctness today.
		c.logger.Warn("failed to write domain cache",
			"path", cachePath,
			"error", err,
		)
	}

	return trim(domains, count), nil
}

// cachePath returns today's cache file path, keyed by UTC date.
func (c *Client) cachePath() string {
	day := c.now().UTC().Format("2006-01-02")
	return filepath.Join(c.cacheDir, fmt.Sprintf(cacheFilePattern, day))
}

// readCache loads the JSON-encoded domain list from the cache file.
func (c *Client) readCache(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Cache path is derived from config
	if err != nil {
		return nil, err
	}

	var domains []string
	if err := json.Unmarshal(data, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// writeCache stores the domain list as JSON, creating the cache directory
// if needed.
func (c *Client) writeCache(path string, domains []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := json.Marshal(domains)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// fetchLive pages through the listing until count domains are collected
// or the service runs out of entries.
func (c *Client) fetchLive(ctx context.Context, count int) ([]string, error) {
	pages := (count + c.pageSize - 1) / c.pageSize
	seen := make(map[string]bool, count)
	domains := make([]string, 0, count)

	for page := 1; page <= pages; page++ {
		pageDomains, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		for _, d := range pageDomains {
			if d == "" || seen[d] {
				continue
			}
			seen[d] = true
			domains = append(domains, d)
		}

		c.logger.Debug("fetched listing page",
			"page", page,
			"domains", len(pageDomains),
		)

		// A short page means the listing is exhausted.
		if len(pageDomains) < c.pageSize {
			break
		}
	}

	return domains, nil
}

// topSitesResponse mirrors the XML listing response shape.
type topSitesResponse struct {
	Sites []listedSite `xml:"Response>TopSites>Country>Sites>Site"`
}

// listedSite is one ranked entry in the listing.
type listedSite struct {
	DataURL string `xml:"DataUrl"`
}

// fetchPage requests and parses one signed listing page.
func (c *Client) fetchPage(ctx context.Context, page int) ([]string, error) {
	signedURL, err := c.signedPageURL(page, c.now())
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024)) //nolint:errcheck // best-effort error detail
		return nil, fmt.Errorf("listing request returned status %d: %s", resp.StatusCode, body)
	}

	var parsed topSitesResponse
	if err := xml.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse listing response: %w", err)
	}

	domains := make([]string, 0, len(parsed.Sites))
	for _, site := range parsed.Sites {
		domains = append(domains, site.DataURL)
	}
	return domains, nil
}

// trim caps the list at count, keeping rank order.
func trim(domains []string, count int) []string {
	if count > 0 && len(domains) > count {
		return domains[:count]
	}
	return domains
}
