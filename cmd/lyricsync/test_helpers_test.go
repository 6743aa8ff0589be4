package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	jobsDir    string
	cacheDir   string
}

// setupCLITestEnv writes a config file whose directories live under a temp
// dir and whose lyric providers point at azlyricsURL.
func setupCLITestEnv(t *testing.T, azlyricsURL string, extra string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("GENIUS_ACCESS_TOKEN", "")

	if azlyricsURL == "" {
		azlyricsURL = "http://127.0.0.1:0"
	}
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		jobsDir:    filepath.Join(base, "jobs"),
		cacheDir:   filepath.Join(base, "cache"),
	}
	content := fmt.Sprintf(`[paths]
jobs_dir = %q
log_dir = %q
cache_dir = %q

[lyrics]
genius_base_url = "http://127.0.0.1:0"
azlyrics_base_url = %q
rate_limit_backoff_seconds = 0
%s
`, env.jobsDir, filepath.Join(base, "logs"), env.cacheDir, azlyricsURL, extra)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--quiet"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
