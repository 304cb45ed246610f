package updater

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
)

func TestTrimV(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v1.2.3", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{"", ""},
		{"vv1.0.0", "v1.0.0"},
	}
	for _, tt := range tests {
		if got := trimV(tt.input); got != tt.want {
			t.Errorf("trimV(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestVersionLess(t *testing.T) {
	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{"newer patch", "0.2.0", "0.2.1", true},
		{"newer minor", "0.2.0", "0.3.0", true},
		{"newer major", "0.2.0", "1.0.0", true},
		{"same version", "0.2.0", "0.2.0", false},
		{"older latest", "0.3.0", "0.2.0", false},
		{"empty current", "", "0.2.0", false},
		{"empty latest", "0.2.0", "", false},
		{"dev build", "dev", "0.2.0", false},
		{"two part current", "0.2", "0.3.0", true},
		{"two part latest", "0.2.0", "0.3", true},
		{"minor jump past nine", "0.9.0", "0.10.0", true},
		{"prerelease suffix", "0.2.0", "0.3rc1.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := versionLess(tt.current, tt.latest); got != tt.want {
				t.Errorf("versionLess(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
			}
		})
	}
}

func TestAssetFor(t *testing.T) {
	want := "devorch_0.3.0_" + runtime.GOOS + "_" + runtime.GOARCH + ".tar.gz"
	if got := assetFor("0.3.0"); got != want {
		t.Errorf("assetFor(\"0.3.0\") = %q, want %q", got, want)
	}
}

// releaseServer serves a fake GitHub latest-release payload.
func releaseServer(t *testing.T, rel release, status int) *Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		if status == http.StatusOK {
			if err := json.NewEncoder(w).Encode(rel); err != nil {
				t.Errorf("encoding test response: %v", err)
			}
		}
	}))
	t.Cleanup(ts.Close)
	return &Client{Endpoint: ts.URL, HTTP: ts.Client()}
}

func TestCheck_UpdateAvailable(t *testing.T) {
	c := releaseServer(t, release{
		TagName: "v0.3.0",
		HTMLURL: "https://github.com/devorch/devorch/releases/tag/v0.3.0",
	}, http.StatusOK)

	result := c.Check("v0.2.0")

	if !result.UpdateAvailable {
		t.Error("expected UpdateAvailable to be true")
	}
	if result.LatestVersion != "0.3.0" {
		t.Errorf("LatestVersion = %q, want %q", result.LatestVersion, "0.3.0")
	}
	if result.CurrentVersion != "0.2.0" {
		t.Errorf("CurrentVersion = %q, want %q", result.CurrentVersion, "0.2.0")
	}
	if result.ReleaseURL == "" {
		t.Error("expected ReleaseURL to be set")
	}
}

func TestCheck_AlreadyLatest(t *testing.T) {
	c := releaseServer(t, release{TagName: "v0.2.0"}, http.StatusOK)

	if c.Check("v0.2.0").UpdateAvailable {
		t.Error("expected no update when already at latest")
	}
}

func TestCheck_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := &Client{Endpoint: ts.URL, HTTP: ts.Client()}
	ts.Close()

	result := c.Check("v0.2.0")
	if result.UpdateAvailable {
		t.Error("expected no update on network error")
	}
	if result.CurrentVersion != "0.2.0" {
		t.Errorf("CurrentVersion = %q, want %q", result.CurrentVersion, "0.2.0")
	}
}

func TestCheck_APIErrorStatus(t *testing.T) {
	c := releaseServer(t, release{}, http.StatusForbidden)

	if c.Check("v0.2.0").UpdateAvailable {
		t.Error("expected no update on API error")
	}
}

func TestCheck_DevBuild(t *testing.T) {
	c := releaseServer(t, release{TagName: "v0.3.0"}, http.StatusOK)

	if c.Check("dev").UpdateAvailable {
		t.Error("dev builds must never report updates")
	}
}

func TestSelfUpdate_AlreadyLatest(t *testing.T) {
	c := releaseServer(t, release{TagName: "v0.2.0"}, http.StatusOK)

	err := c.SelfUpdate("v0.2.0")
	if err == nil {
		t.Fatal("expected error when already at latest version")
	}
}

func TestSelfUpdate_NoMatchingAsset(t *testing.T) {
	c := releaseServer(t, release{TagName: "v9.9.9"}, http.StatusOK)

	err := c.SelfUpdate("v0.1.0")
	if err == nil {
		t.Fatal("expected error when no asset matches this platform")
	}
}

func TestBinaryFromTarGz(t *testing.T) {
	content := []byte("#!/bin/sh\necho devorch\n")

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	if err := tw.WriteHeader(&tar.Header{Name: "devorch", Mode: 0o755, Size: int64(len(content))}); err != nil {
		t.Fatalf("writing tar header: %v", err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatalf("writing tar body: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar writer: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}

	got, err := binaryFromTarGz(&buf)
	if err != nil {
		t.Fatalf("binaryFromTarGz: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("extracted %q, want %q", got, content)
	}
}

func TestBinaryFromTarGz_Missing(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	if err := tw.WriteHeader(&tar.Header{Name: "README.md", Mode: 0o644, Size: 0}); err != nil {
		t.Fatalf("writing tar header: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar writer: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}

	if _, err := binaryFromTarGz(&buf); err == nil {
		t.Fatal("expected error when binary is absent from archive")
	}
}

func TestBinaryFromTarGz_NotGzip(t *testing.T) {
	if _, err := binaryFromTarGz(bytes.NewReader([]byte("plain text"))); err == nil {
		t.Fatal("expected error for non-gzip input")
	}
}
