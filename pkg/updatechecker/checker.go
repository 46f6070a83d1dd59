// Package updatechecker notifies users of cac-core applications when a
// newer release of their package is available. Latest versions come from
// the GitHub releases API or the PyPI JSON API; results are cached on
// disk so the registry is contacted at most once per check interval.
package updatechecker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/rpunt/cac-core/pkg/logger"
	"github.com/rpunt/cac-core/pkg/verbose"
)

// Source identifies the registry queried for the latest version.
type Source string

const (
	// SourceGitHub checks the latest release of a GitHub repository.
	SourceGitHub Source = "github"

	// SourcePyPI checks the latest release of a PyPI package.
	SourcePyPI Source = "pypi"
)

const (
	defaultInterval    = time.Hour
	defaultHTTPTimeout = 5 * time.Second
	githubBaseURL      = "https://api.github.com"
	pypiBaseURL        = "https://pypi.org"

	cacheFileName   = "update.json"
	dirPermissions  = 0o700
	filePermissions = 0o600
)

// Status describes the outcome of an update check.
//
// Fields:
//   - Package: The package name that was checked
//   - CurrentVersion: The running version
//   - LatestVersion: The newest known version, may equal CurrentVersion
//   - UpdateAvailable: Whether LatestVersion is newer than CurrentVersion
//   - LastChecked: When the registry was last contacted
type Status struct {
	Package         string    `json:"package"`
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	UpdateAvailable bool      `json:"update_available"`
	LastChecked     time.Time `json:"last_checked"`
}

// cacheData is the on-disk record at <config home>/<package>/update.json.
type cacheData struct {
	LastCheck      time.Time `json:"last_check"`
	LatestVersion  string    `json:"latest_version"`
	CurrentVersion string    `json:"current_version"`
}

// Checker checks a package for newer released versions.
type Checker struct {
	pkg      string
	current  string
	source   Source
	repo     string
	interval time.Duration

	httpClient  *http.Client
	githubBase  string
	pypiBase    string
	cacheDir    string
	upgradeHint string
	log         *zap.SugaredLogger
}

// Option configures a Checker.
type Option func(*Checker)

// WithGitHub checks GitHub releases of the given "owner/repo" instead of
// PyPI.
//
// Parameters:
//   - repo: Repository in "owner/repo" form
//
// Returns:
//   - Option: Checker option
func WithGitHub(repo string) Option {
	return func(c *Checker) {
		c.source = SourceGitHub
		c.repo = repo
	}
}

// WithInterval sets how long cached results stay fresh (default 1h).
func WithInterval(interval time.Duration) Option {
	return func(c *Checker) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithHTTPClient replaces the HTTP client used for registry calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURLs overrides the registry endpoints, mainly for tests.
//
// Parameters:
//   - github: Base URL for the GitHub API; empty keeps the default
//   - pypi: Base URL for the PyPI API; empty keeps the default
//
// Returns:
//   - Option: Checker option
func WithBaseURLs(github, pypi string) Option {
	return func(c *Checker) {
		if github != "" {
			c.githubBase = strings.TrimSuffix(github, "/")
		}
		if pypi != "" {
			c.pypiBase = strings.TrimSuffix(pypi, "/")
		}
	}
}

// WithCacheDir overrides the directory holding update.json.
func WithCacheDir(dir string) Option {
	return func(c *Checker) {
		c.cacheDir = dir
	}
}

// WithUpgradeHint sets the command suggested to users when an update is
// available (e.g., "brew upgrade myapp").
func WithUpgradeHint(hint string) Option {
	return func(c *Checker) {
		c.upgradeHint = hint
	}
}

// New creates a checker for a package at its current version.
//
// The default source is PyPI; use WithGitHub for applications released
// through GitHub.
//
// Parameters:
//   - pkg: The package name to check
//   - currentVersion: The running version (with or without "v" prefix)
//   - opts: Checker options
//
// Returns:
//   - *Checker: The configured checker
func New(pkg, currentVersion string, opts ...Option) *Checker {
	c := &Checker{
		pkg:        pkg,
		current:    strings.TrimSpace(currentVersion),
		source:     SourcePyPI,
		interval:   defaultInterval,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		githubBase: githubBaseURL,
		pypiBase:   pypiBaseURL,
		log:        logger.New("updatechecker"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.current == "" {
		c.current = "0.0.0"
	}
	return c
}

// Check returns the update status, contacting the registry when the
// cached result is stale.
//
// It performs the following operations:
//   - Step 1: Loads the cached result from update.json
//   - Step 2: Fetches the latest version when forced or the cache is
//     older than the check interval
//   - Step 3: Persists the refreshed cache
//
// Network and parse failures never fail the check: the cached (or
// current) version is used instead so host applications keep working
// offline.
//
// Parameters:
//   - ctx: Context for the registry request
//   - force: Bypass the check interval and query the registry now
//
// Returns:
//   - Status: The update status
//   - error: Only on cache-write failures; registry errors are absorbed
func (c *Checker) Check(ctx context.Context, force bool) (Status, error) {
	cache := c.loadCache()

	stale := force || cache.LastCheck.IsZero() || time.Since(cache.LastCheck) > c.interval
	if stale {
		latest, err := c.fetchLatestVersion(ctx)
		if err != nil {
			verbose.Infof("Update check failed for %s: %v", c.pkg, err)
			c.log.Debugf("update check failed: %v", err)
			if latest = cache.LatestVersion; latest == "" {
				latest = c.current
			}
		}

		cache.LastCheck = time.Now()
		cache.LatestVersion = latest
		cache.CurrentVersion = c.current
		if err := c.saveCache(cache); err != nil {
			return c.status(cache), err
		}
	}

	return c.status(cache), nil
}

// Notify prints upgrade guidance when an update is available.
//
// Parameters:
//   - status: A status previously returned by Check
//   - quiet: Suppress the "up to date" message when no update exists
//
// Returns:
//   - bool: true if an update is available
func (c *Checker) Notify(status Status, quiet bool) bool {
	if status.UpdateAvailable {
		c.log.Infof("Update available for %s: %s -> %s", c.pkg, status.CurrentVersion, status.LatestVersion)
		if c.upgradeHint != "" {
			c.log.Infof("Update with: %s", c.upgradeHint)
		}
		return true
	}
	if !quiet {
		c.log.Infof("%s is up to date (%s)", c.pkg, status.CurrentVersion)
	}
	return false
}

// status derives the user-facing status from cache contents.
func (c *Checker) status(cache cacheData) Status {
	latest := cache.LatestVersion
	if latest == "" {
		latest = c.current
	}
	return Status{
		Package:         c.pkg,
		CurrentVersion:  c.current,
		LatestVersion:   latest,
		UpdateAvailable: IsNewer(latest, c.current),
		LastChecked:     cache.LastCheck,
	}
}

// IsNewer reports whether candidate is a newer semantic version than
// current. Versions are accepted with or without the "v" prefix;
// uncomparable versions report false.
//
// Parameters:
//   - candidate: The version that may be newer
//   - current: The version to compare against
//
// Returns:
//   - bool: true when candidate > current
func IsNewer(candidate, current string) bool {
	cv := canonicalVersion(candidate)
	cur := canonicalVersion(current)
	if !semver.IsValid(cv) || !semver.IsValid(cur) {
		return false
	}
	return semver.Compare(cv, cur) > 0
}

// canonicalVersion normalizes a version string for x/mod/semver, which
// requires the leading "v".
func canonicalVersion(version string) string {
	v := strings.TrimSpace(version)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// fetchLatestVersion queries the configured registry.
func (c *Checker) fetchLatestVersion(ctx context.Context) (string, error) {
	var url string
	switch c.source {
	case SourceGitHub:
		if c.repo == "" {
			return "", fmt.Errorf("github source requires a repository")
		}
		url = fmt.Sprintf("%s/repos/%s/releases/latest", c.githubBase, c.repo)
	default:
		url = fmt.Sprintf("%s/pypi/%s/json", c.pypiBase, c.pkg)
	}

	verbose.Infof("Checking latest version: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build update request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch latest version: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch latest version: unexpected status %s", resp.Status)
	}

	switch c.source {
	case SourceGitHub:
		var release struct {
			TagName string `json:"tag_name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
			return "", fmt.Errorf("decode release response: %w", err)
		}
		return strings.TrimPrefix(release.TagName, "v"), nil
	default:
		var payload struct {
			Info struct {
				Version string `json:"version"`
			} `json:"info"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return "", fmt.Errorf("decode registry response: %w", err)
		}
		return payload.Info.Version, nil
	}
}

// cachePath resolves the update.json location, honoring the same config
// home override as the config package.
func (c *Checker) cachePath() (string, error) {
	dir := c.cacheDir
	if dir == "" {
		if env := os.Getenv("CAC_CONFIG_HOME"); env != "" {
			dir = filepath.Join(env, c.pkg)
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home directory: %w", err)
			}
			dir = filepath.Join(home, ".config", c.pkg)
		}
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}
	return filepath.Join(dir, cacheFileName), nil
}

// loadCache reads the cached check result. A missing or corrupt cache
// is treated as empty.
func (c *Checker) loadCache() cacheData {
	path, err := c.cachePath()
	if err != nil {
		verbose.Infof("Update cache unavailable: %v", err)
		return cacheData{CurrentVersion: c.current}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cacheData{CurrentVersion: c.current}
	}

	var cache cacheData
	if err := json.Unmarshal(data, &cache); err != nil {
		verbose.Infof("Ignoring corrupt update cache %s: %v", path, err)
		return cacheData{CurrentVersion: c.current}
	}
	return cache
}

// saveCache persists the check result.
func (c *Checker) saveCache(cache cacheData) error {
	path, err := c.cachePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encode update cache: %w", err)
	}
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("write update cache: %w", err)
	}
	return nil
}
