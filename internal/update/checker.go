package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "skycryptplus/internal/errors"
	"skycryptplus/internal/logging"
)

// Default configuration values.
const (
	DefaultRepoOwner = "Balionelis"
	DefaultRepoName  = "SkyCryptPlus"
	DefaultBaseURL   = "https://api.github.com"
	DefaultTimeout   = 5 * time.Second
	// MaxTimeout bounds every release request regardless of configuration.
	MaxTimeout = 5 * time.Second

	userAgent = "SkyCryptPlus-update-checker"
)

// Error variables for specific error conditions.
var (
	ErrNetworkFailure = errors.New("network request failed")
	ErrRateLimited    = errors.New("rate limited by GitHub API")
	ErrInvalidVersion = errors.New("invalid version format")
)

// ReleaseInfo contains information about a GitHub release.
type ReleaseInfo struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
	Prerelease  bool      `json:"prerelease"`
	Draft       bool      `json:"draft"`

	// Version is TagName parsed; filled in after decoding.
	Version Version `json:"-"`
}

// UpdateInfo contains the result of a version check.
type UpdateInfo struct {
	CurrentVersion  Version
	LatestVersion   Version
	UpdateAvailable bool
	ReleaseURL      string
	ReleaseNotes    string
	PublishedAt     time.Time
	IsPrerelease    bool
	CheckedAt       time.Time
}

// ReleasesPageURL is the public releases page of a repository, used when the
// feed does not name a release page.
func ReleasesPageURL(owner, repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s/releases", owner, repo)
}

// Checker handles version checking against GitHub releases.
type Checker struct {
	owner      string
	repo       string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	delay      time.Duration
	log        logging.Logger
	now        func() time.Time
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithHTTPClient sets a custom HTTP client for the checker.
func WithHTTPClient(client *http.Client) CheckerOption {
	return func(c *Checker) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout. Values above MaxTimeout are
// clamped and non-positive values select DefaultTimeout.
func WithTimeout(timeout time.Duration) CheckerOption {
	return func(c *Checker) {
		c.timeout = timeout
	}
}

// WithBaseURL points the checker at another API root (used by tests).
func WithBaseURL(url string) CheckerOption {
	return func(c *Checker) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithDelay makes CheckAsync wait before querying the feed so startup is not
// competing with the check.
func WithDelay(d time.Duration) CheckerOption {
	return func(c *Checker) {
		c.delay = d
	}
}

// WithLogger overrides the logger. The package-level log is used by default.
func WithLogger(l logging.Logger) CheckerOption {
	return func(c *Checker) {
		c.log = l
	}
}

// NewChecker creates a new version checker for the specified repository.
// Empty owner or repo select the SkyCrypt+ repository.
func NewChecker(owner, repo string, opts ...CheckerOption) *Checker {
	if strings.TrimSpace(owner) == "" {
		owner = DefaultRepoOwner
	}
	if strings.TrimSpace(repo) == "" {
		repo = DefaultRepoName
	}
	c := &Checker{
		owner:   owner,
		repo:    repo,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		timeout: DefaultTimeout,
		log:     logging.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.timeout = clampTimeout(c.timeout)
	return c
}

func clampTimeout(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultTimeout
	case d > MaxTimeout:
		return MaxTimeout
	default:
		return d
	}
}

// Timeout returns the effective per-request timeout.
func (c *Checker) Timeout() time.Duration { return c.timeout }

// Check queries GitHub for the latest release and compares it to the current version.
// Returns nil without error for development builds or if the version cannot be parsed.
func (c *Checker) Check(ctx context.Context, currentVersion string) (*UpdateInfo, error) {
	// Skip check for development builds
	if isDevBuild(currentVersion) {
		return nil, nil
	}

	current, err := ParseVersion(currentVersion)
	if err != nil {
		// Silently skip check if version is unparseable (likely a dev build)
		return nil, nil
	}

	release, err := c.fetchLatestRelease(ctx)
	if err != nil {
		return nil, err
	}

	return &UpdateInfo{
		CurrentVersion:  current,
		LatestVersion:   release.Version,
		UpdateAvailable: current.LessThan(release.Version),
		ReleaseURL:      release.HTMLURL,
		ReleaseNotes:    release.Body,
		PublishedAt:     release.PublishedAt,
		IsPrerelease:    release.Prerelease,
		CheckedAt:       c.now(),
	}, nil
}

func isDevBuild(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "dev", "development":
		return true
	}
	return false
}

// LatestRelease fetches the newest published release. Every failure is
// logged and reported as false.
func (c *Checker) LatestRelease(ctx context.Context) (*ReleaseInfo, bool) {
	release, err := c.fetchLatestRelease(ctx)
	if err != nil {
		c.log.Warnf("Error checking for updates: %v", err)
		return nil, false
	}
	return release, true
}

// fetchLatestRelease fetches the latest release from GitHub API.
func (c *Checker) fetchLatestRelease(ctx context.Context) (*ReleaseInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeNetworkFailure, "create request", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeNetworkFailure, "fetch latest release",
			fmt.Errorf("%w: %v", ErrNetworkFailure, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperrors.New(apperrors.CodeNetworkFailure, "fetch latest release", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.CodeNetworkFailure, "fetch latest release",
			fmt.Errorf("%w: status %d", ErrNetworkFailure, resp.StatusCode))
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, apperrors.New(apperrors.CodeSerializationFailed, "decode response", err)
	}

	if strings.TrimSpace(release.TagName) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidVersion, "release has no tag_name", ErrInvalidVersion)
	}
	release.Version, err = ParseVersion(release.TagName)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidVersion, "parse latest version",
			fmt.Errorf("%w: %v", ErrInvalidVersion, err))
	}
	if strings.TrimSpace(release.HTMLURL) == "" {
		release.HTMLURL = ReleasesPageURL(c.owner, c.repo)
	}

	return &release, nil
}
