package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"winnow/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "winnow")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.LogDir != filepath.Join(wantState, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Worker.PollInterval != config.Default().Worker.PollInterval {
		t.Fatalf("unexpected poll interval: %d", cfg.Worker.PollInterval)
	}
	if cfg.Worker.StaleTimeout != config.Default().Worker.StaleTimeout {
		t.Fatalf("unexpected stale timeout: %d", cfg.Worker.StaleTimeout)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected log level: %q", cfg.Logging.Level)
	}
	if cfg.DatabasePath() != filepath.Join(wantState, "jobs.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "winnow.toml")

	type payload struct {
		Paths struct {
			StateDir string `toml:"state_dir"`
		} `toml:"paths"`
		Worker struct {
			PollInterval int `toml:"poll_interval"`
			StaleTimeout int `toml:"stale_timeout"`
		} `toml:"worker"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	custom.Worker.PollInterval = 2
	custom.Worker.StaleTimeout = 900
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.StateDir != filepath.Join(tempDir, "state") {
		t.Fatalf("expected state dir override, got %q", cfg.Paths.StateDir)
	}
	if cfg.Worker.PollInterval != 2 {
		t.Fatalf("expected poll interval 2, got %d", cfg.Worker.PollInterval)
	}
	if cfg.Worker.StaleTimeout != 900 {
		t.Fatalf("expected stale timeout 900, got %d", cfg.Worker.StaleTimeout)
	}
	if cfg.Worker.ErrorRetryInterval != config.Default().Worker.ErrorRetryInterval {
		t.Fatalf("expected default error retry interval, got %d", cfg.Worker.ErrorRetryInterval)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized json format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsStaleTimeoutBelowPollInterval(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "winnow.toml")

	contents := "[worker]\npoll_interval = 120\nstale_timeout = 60\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error when stale timeout is below poll interval")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "state_dir") {
		t.Fatalf("sample config missing state_dir: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Worker.PollInterval != config.Default().Worker.PollInterval {
		t.Fatalf("expected sample poll interval to match default, got %d", cfg.Worker.PollInterval)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Worker.PollInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive poll interval")
	}

	cfg = config.Default()
	cfg.Worker.ReclaimInterval = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative reclaim interval")
	}

	cfg = config.Default()
	cfg.Worker.StaleTimeout = cfg.Worker.PollInterval
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when stale timeout <= poll interval")
	}

	cfg = config.Default()
	cfg.Paths.StateDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty state dir")
	}
}
