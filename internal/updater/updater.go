// Package updater checks GitHub releases for a newer devorch and can
// replace the running binary in place. The check is best-effort: it
// runs in a goroutine during "serve" and never blocks or fails the
// server.
package updater

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	githubRepo  = "devorch/devorch"
	latestURL   = "https://api.github.com/repos/" + githubRepo + "/releases/latest"
	httpTimeout = 10 * time.Second
)

// Client talks to the GitHub releases API. The zero value is not
// usable; construct with NewClient. Tests point Endpoint at a local
// httptest server.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// NewClient returns a Client against the public GitHub API.
func NewClient() *Client {
	return &Client{
		Endpoint: latestURL,
		HTTP:     &http.Client{Timeout: httpTimeout},
	}
}

type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// CheckResult reports the outcome of a version check.
type CheckResult struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// Check queries GitHub for the latest release. Network and decode
// failures are swallowed: the result simply reports no update.
func (c *Client) Check(currentVersion string) CheckResult {
	result := CheckResult{CurrentVersion: trimV(currentVersion)}

	rel, err := c.latest(currentVersion)
	if err != nil {
		return result
	}

	result.LatestVersion = trimV(rel.TagName)
	result.ReleaseURL = rel.HTMLURL
	result.UpdateAvailable = versionLess(result.CurrentVersion, result.LatestVersion)
	return result
}

// SelfUpdate downloads the release binary for this OS/arch and swaps
// it over the running executable. The write is atomic: download to a
// sibling temp file, then rename.
func (c *Client) SelfUpdate(currentVersion string) error {
	rel, err := c.latest(currentVersion)
	if err != nil {
		return err
	}

	latestVersion := trimV(rel.TagName)
	if !versionLess(trimV(currentVersion), latestVersion) {
		return fmt.Errorf("already at latest version (%s)", currentVersion)
	}

	assetName := assetFor(latestVersion)
	var downloadURL string
	for _, a := range rel.Assets {
		if a.Name == assetName {
			downloadURL = a.BrowserDownloadURL
			break
		}
	}
	if downloadURL == "" {
		return fmt.Errorf("no release asset for %s/%s (wanted %s)", runtime.GOOS, runtime.GOARCH, assetName)
	}

	resp, err := c.HTTP.Get(downloadURL)
	if err != nil {
		return fmt.Errorf("downloading release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned %d", resp.StatusCode)
	}

	binary, err := binaryFromTarGz(resp.Body)
	if err != nil {
		return fmt.Errorf("extracting binary: %w", err)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding current executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	tmpPath := execPath + ".new"
	if err := os.WriteFile(tmpPath, binary, 0o755); err != nil {
		return fmt.Errorf("writing new binary: %w", err)
	}
	if err := os.Rename(tmpPath, execPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing binary: %w", err)
	}
	return nil
}

func (c *Client) latest(currentVersion string) (*release, error) {
	req, err := http.NewRequest(http.MethodGet, c.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "devorch/"+currentVersion)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("parsing release info: %w", err)
	}
	return &rel, nil
}

// binaryFromTarGz reads the devorch binary out of a release archive.
func binaryFromTarGz(r io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if filepath.Base(header.Name) == "devorch" {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("devorch binary not found in archive")
}

// assetFor builds the archive filename GoReleaser publishes for this
// platform.
func assetFor(version string) string {
	return fmt.Sprintf("devorch_%s_%s_%s.tar.gz", version, runtime.GOOS, runtime.GOARCH)
}

func trimV(v string) string {
	return strings.TrimPrefix(v, "v")
}

// versionLess reports whether current is older than latest, comparing
// semver fields numerically. Dev builds never see updates.
func versionLess(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}

	cur := strings.Split(current, ".")
	lat := strings.Split(latest, ".")
	for i := 0; i < 3; i++ {
		c, l := part(cur, i), part(lat, i)
		if l != c {
			return l > c
		}
	}
	return false
}

// part returns the numeric value of the i-th version field, reading
// only the leading digits so pre-release suffixes like "3rc1" parse.
func part(fields []string, i int) int {
	if i >= len(fields) {
		return 0
	}
	digits := fields[i]
	if j := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }); j >= 0 {
		digits = digits[:j]
	}
	n, _ := strconv.Atoi(digits)
	return n
}
