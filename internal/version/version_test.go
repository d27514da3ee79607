package version

import (
	"testing"
)

func TestString(t *testing.T) {
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	defer func() {
		Version, Commit, BuildTime = origVersion, origCommit, origBuildTime
	}()

	tests := []struct {
		name                     string
		version, commit, builtAt string
		want                     string
	}{
		{"defaults", "dev", "unknown", "unknown", "dev (unknown) built unknown"},
		{"release", "1.2.0", "abc1234", "2026-10-01T12:00:00Z", "1.2.0 (abc1234) built 2026-10-01T12:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, BuildTime = tt.version, tt.commit, tt.builtAt
			if got := String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "0.3.1"
	if got := UserAgent(); got != "coinsync/0.3.1" {
		t.Errorf("UserAgent() = %q, want %q", got, "coinsync/0.3.1")
	}
}
