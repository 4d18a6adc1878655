package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func stub(t *testing.T, version, commit string, settings map[string]string) {
	t.Helper()
	oldVersion, oldCommit, oldSettings := Version, GitCommit, vcsSettings
	t.Cleanup(func() { Version, GitCommit, vcsSettings = oldVersion, oldCommit, oldSettings })
	Version, GitCommit = version, commit
	vcsSettings = func() map[string]string { return settings }
}

func TestGetBuildInfo(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		commit      string
		settings    map[string]string
		wantVersion string
		wantCommit  string
		wantShort   string
		release     bool
	}{
		{
			name:        "stamped release",
			version:     "v1.2.0",
			commit:      "abcdef1234567",
			wantVersion: "v1.2.0",
			wantCommit:  "abcdef1234567",
			wantShort:   "v1.2.0 (abcdef1)",
			release:     true,
		},
		{
			name:        "module version from go install",
			version:     "dev",
			commit:      "unknown",
			settings:    map[string]string{"main.version": "v0.4.1"},
			wantVersion: "v0.4.1",
			wantCommit:  "unknown",
			wantShort:   "v0.4.1",
			release:     true,
		},
		{
			name:        "local build from a checkout",
			version:     "dev",
			commit:      "unknown",
			settings:    map[string]string{"main.version": "(devel)", "vcs.revision": "1234567890", "vcs.modified": "true"},
			wantVersion: "dev-1234567",
			wantCommit:  "1234567890",
			wantShort:   "dev-1234567",
		},
		{
			name:        "nothing known",
			version:     "dev",
			commit:      "unknown",
			settings:    map[string]string{},
			wantVersion: "dev",
			wantCommit:  "unknown",
			wantShort:   "dev",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub(t, tt.version, tt.commit, tt.settings)

			info := GetBuildInfo()
			assert.Equal(t, tt.wantVersion, info.Version)
			assert.Equal(t, tt.wantCommit, info.GitCommit)
			assert.Equal(t, tt.release, info.Release)
			assert.Equal(t, tt.settings["vcs.modified"] == "true", info.Dirty)
			assert.Equal(t, tt.wantShort, GetShortVersion())
		})
	}
}

func TestParseBuildTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, want, parseBuildTime("2024-05-01T10:30:00Z"))
	assert.Equal(t, want, parseBuildTime("2024-05-01T12:30:00+02:00"))
	assert.Equal(t, want, parseBuildTime("2024-05-01 10:30:00"))
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.True(t, parseBuildTime("yesterday").IsZero())
}
