package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain path untouched", in: "/var/lib/tally.db", want: "/var/lib/tally.db"},
		{name: "tilde prefix", in: "~/data/tally.db", want: filepath.Join(home, "data", "tally.db")},
		{name: "bare tilde", in: "~", want: home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandPathEnvVar(t *testing.T) {
	t.Setenv("TALLY_TEST_DIR", "/opt/tally")
	if got := ExpandPath("$TALLY_TEST_DIR/db"); got != "/opt/tally/db" {
		t.Errorf("ExpandPath with env var = %q", got)
	}
}

func TestDefaultDatabasePath(t *testing.T) {
	got := DefaultDatabasePath()
	if !strings.HasSuffix(got, filepath.Join("tally", "tally.db")) {
		t.Errorf("DefaultDatabasePath() = %q, want tally/tally.db suffix", got)
	}
}
