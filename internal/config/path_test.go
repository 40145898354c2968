package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	t.Setenv("TEND_TEST_DIR", "/data/tend")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"empty", "", ""},
		{"absolute untouched", "/var/lib/tend.db", "/var/lib/tend.db"},
		{"tilde prefix", "~/notes/tend.db", filepath.Join(home, "notes/tend.db")},
		{"bare tilde", "~", home},
		{"env var", "$TEND_TEST_DIR/tend.db", "/data/tend/tend.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.path); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
