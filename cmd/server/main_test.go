package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunReportsStartupFailures(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("LOG_LEVEL", "error")

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bills.db")
	cfgPath := filepath.Join(dir, "server.toml")
	cfg := "[server]\naddr = \":-1\"\ndb_path = \"" + filepath.ToSlash(dbPath) + "\"\nmetrics = false\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"-port", "1"}, 2},
		{"missing config file", []string{"-config", filepath.Join(dir, "missing.toml")}, 1},
		{"listen failure", []string{"-config", cfgPath}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected the store to have been opened at %s: %v", dbPath, err)
	}
}
