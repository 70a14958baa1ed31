package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amishk599/sponsorscout/internal/config"
)

func TestLoadConfig_Priority(t *testing.T) {
	dir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	// Missing default file falls back to built-in defaults.
	t.Setenv("SPONSORSCOUT_CONFIG", "")
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig default: %v", err)
	}
	if cfg.Servers[0].Name != config.DefaultServerName {
		t.Errorf("Servers = %+v", cfg.Servers)
	}

	envPath := filepath.Join(dir, "env.yaml")
	writeFile(t, envPath, "servers:\n  - name: env\n    base_url: http://env:8000\n    enabled: true\n")
	t.Setenv("SPONSORSCOUT_CONFIG", envPath)
	cfg, err = loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig env: %v", err)
	}
	if cfg.Servers[0].Name != "env" {
		t.Errorf("env config not used: %+v", cfg.Servers)
	}

	flagPath := filepath.Join(dir, "flag.yaml")
	writeFile(t, flagPath, "servers:\n  - name: flag\n    base_url: http://flag:8000\n    enabled: true\n")
	cfg, err = loadConfig(flagPath)
	if err != nil {
		t.Fatalf("loadConfig flag: %v", err)
	}
	if cfg.Servers[0].Name != "flag" {
		t.Errorf("flag config not used: %+v", cfg.Servers)
	}

	t.Setenv("SPONSORSCOUT_CONFIG", filepath.Join(dir, "missing.yaml"))
	if _, err := loadConfig(""); err == nil {
		t.Error("expected error for a missing file named by SPONSORSCOUT_CONFIG")
	}
}

func TestResolveServer(t *testing.T) {
	cfg := &config.Config{Servers: []config.ServerConfig{
		{Name: "local", BaseURL: "http://localhost:8000", Enabled: true},
		{Name: "staging", BaseURL: "https://staging", Enabled: true},
		{Name: "old", BaseURL: "https://old", Enabled: false},
	}}

	t.Cleanup(func() { serverName = "" })

	serverName = ""
	srv, ok, err := resolveServer(cfg, false)
	if err != nil || !ok || srv.Name != "local" {
		t.Errorf("non-interactive default = %+v, %v, %v", srv, ok, err)
	}

	serverName = "staging"
	srv, ok, err = resolveServer(cfg, true)
	if err != nil || !ok || srv.Name != "staging" {
		t.Errorf("--server staging = %+v, %v, %v", srv, ok, err)
	}

	serverName = "old"
	if _, _, err := resolveServer(cfg, false); err == nil {
		t.Error("expected error for a disabled server")
	}
}

func TestBuildOrchestrator_HistoryToggle(t *testing.T) {
	srv := config.ServerConfig{Name: "local", BaseURL: "http://localhost:8000", Enabled: true}
	for _, enabled := range []bool{true, false} {
		cfg := config.Default()
		cfg.History.Enabled = enabled
		orch, m, cleanup, err := buildOrchestrator(cfg, srv, setupLogger(os.Stderr, false))
		if err != nil {
			t.Fatalf("buildOrchestrator(history=%v): %v", enabled, err)
		}
		if orch == nil || m == nil {
			t.Fatal("nil orchestrator or metrics")
		}
		entries, err := orch.History(10)
		if err != nil || len(entries) != 0 {
			t.Errorf("History = %v, %v", entries, err)
		}
		cleanup()
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
