package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func restore(t *testing.T) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	t.Cleanup(func() {
		Version = origVersion
		Commit = origCommit
		BuildTime = origBuildTime
	})
}

func TestString(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		restore(t)
		Version = "dev"
		Commit = "unknown"
		BuildTime = "unknown"

		result := String()
		for _, part := range []string{"dev", "unknown", "built"} {
			if !strings.Contains(result, part) {
				t.Errorf("String() = %q, should contain %q", result, part)
			}
		}
	})

	t.Run("custom values", func(t *testing.T) {
		restore(t)
		Version = "1.2.3"
		Commit = "abc1234"
		BuildTime = "2024-01-15T10:00:00Z"

		expected := "1.2.3 (abc1234) built 2024-01-15T10:00:00Z"
		if result := String(); result != expected {
			t.Errorf("String() = %q, want %q", result, expected)
		}
	})
}

func TestResolve(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
	}

	t.Run("fills unset values", func(t *testing.T) {
		restore(t)
		Commit = "unknown"
		BuildTime = "unknown"

		resolve(settings)

		if Commit != "0123456" {
			t.Errorf("Commit = %q, want %q", Commit, "0123456")
		}
		if BuildTime != "2026-01-02T03:04:05Z" {
			t.Errorf("BuildTime = %q, want %q", BuildTime, "2026-01-02T03:04:05Z")
		}
	})

	t.Run("keeps ldflags values", func(t *testing.T) {
		restore(t)
		Commit = "abc1234"
		BuildTime = "2024-01-15T10:00:00Z"

		resolve(settings)

		if Commit != "abc1234" {
			t.Errorf("Commit = %q, want %q", Commit, "abc1234")
		}
		if BuildTime != "2024-01-15T10:00:00Z" {
			t.Errorf("BuildTime = %q, want %q", BuildTime, "2024-01-15T10:00:00Z")
		}
	})
}
