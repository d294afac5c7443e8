package version

import "testing"

func TestStringIncludesOverrides(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version = "1.2.3"
	GitCommit = "abc123"
	BuildDate = "2026-01-15"

	got := String()
	want := "1.2.3 (abc123) built 2026-01-15"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestStringBareVersion(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
	if got := String(); got != "0.1.0-dev" {
		t.Errorf("String() = %q, want bare version", got)
	}
}
