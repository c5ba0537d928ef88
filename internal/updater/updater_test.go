package updater

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
)

// --- trimV ---

func TestTrimV(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v1.2.3", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{"v0.1.0", "0.1.0"},
		{"", ""},
		{"v", ""},
		{"vv1.0.0", "v1.0.0"}, // only strips one leading v
	}

	for _, tt := range tests {
		got := trimV(tt.input)
		if got != tt.want {
			t.Errorf("trimV(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// --- semverLess ---

func TestSemverLess(t *testing.T) {
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
		{"older version", "0.3.0", "0.2.0", false},
		{"empty current", "", "0.2.0", false},
		{"empty latest", "0.2.0", "", false},
		{"dev current", "dev", "0.2.0", false},
		{"two part version", "0.2", "0.3.0", true},
		{"two part latest", "0.2.0", "0.3", true},
		{"major jump", "1.9.9", "2.0.0", true},
		{"minor jump", "0.9.0", "0.10.0", true},
		{"rc suffix stops at non-digit", "0.2.0", "0.3rc1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := semverLess(tt.current, tt.latest)
			if got != tt.want {
				t.Errorf("semverLess(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
			}
		})
	}
}

// --- assetName ---

func TestAssetName_MatchesGoReleaserTemplate(t *testing.T) {
	got := assetName("1.2.3")
	if !strings.HasPrefix(got, "docent_1.2.3_"+runtime.GOOS+"_"+runtime.GOARCH) {
		t.Errorf("assetName = %q, want docent_1.2.3_%s_%s prefix", got, runtime.GOOS, runtime.GOARCH)
	}
	if !strings.HasSuffix(got, ".tar.gz") {
		t.Errorf("assetName = %q, want .tar.gz suffix", got)
	}
}

// --- CheckVersion ---

// withReleaseServer points the updater at a fake GitHub API for the
// duration of one test.
func withReleaseServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	oldEndpoint := releaseEndpoint
	oldClient := httpClient
	releaseEndpoint = srv.URL
	httpClient = srv.Client()
	t.Cleanup(func() {
		releaseEndpoint = oldEndpoint
		httpClient = oldClient
	})
}

func TestCheckVersion_UpdateAvailable(t *testing.T) {
	withReleaseServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Release{
			TagName: "v0.3.0",
			HTMLURL: "https://example.com/release",
		})
	})

	status := CheckVersion("0.2.0")
	if !status.UpdateAvailable {
		t.Fatal("expected update to be available")
	}
	if status.LatestVersion != "0.3.0" {
		t.Errorf("LatestVersion = %q, want 0.3.0", status.LatestVersion)
	}
	if status.ReleaseURL != "https://example.com/release" {
		t.Errorf("ReleaseURL = %q", status.ReleaseURL)
	}
}

func TestCheckVersion_AlreadyLatest(t *testing.T) {
	withReleaseServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Release{TagName: "v0.2.0"})
	})

	status := CheckVersion("0.2.0")
	if status.UpdateAvailable {
		t.Error("expected no update for same version")
	}
}

func TestCheckVersion_ServerErrorIsSilent(t *testing.T) {
	withReleaseServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	status := CheckVersion("0.2.0")
	if status.UpdateAvailable {
		t.Error("expected no update on server error")
	}
	if status.CurrentVersion != "0.2.0" {
		t.Errorf("CurrentVersion = %q, want 0.2.0", status.CurrentVersion)
	}
}

func TestCheckVersion_DevBuildNeverUpdates(t *testing.T) {
	withReleaseServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Release{TagName: "v9.9.9"})
	})

	status := CheckVersion("dev")
	if status.UpdateAvailable {
		t.Error("dev builds must never see updates")
	}
}
