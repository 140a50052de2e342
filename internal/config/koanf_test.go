// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points config discovery at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "absent.yaml"))
	t.Setenv(DotEnvPathEnvVar, filepath.Join(dir, "absent.env"))
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Store.Path != "./data/store" || !cfg.Store.SyncWrites {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.MaxSlotBytes != 64<<20 {
		t.Errorf("Store.MaxSlotBytes = %d, want 64MiB", cfg.Store.MaxSlotBytes)
	}
	if cfg.Sync.EndpointURL != "" {
		t.Errorf("Sync.EndpointURL should be empty by default (offline), got %q", cfg.Sync.EndpointURL)
	}
	if cfg.Sync.Timeout != 60*time.Second {
		t.Errorf("Sync.Timeout = %v, want 60s", cfg.Sync.Timeout)
	}
	if cfg.Server.Port != 8686 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8686 {
		t.Errorf("Server.Port = %d, want 8686", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("STORE_PATH", "/tmp/school")
	t.Setenv("STORE_IN_MEMORY", "true")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("SYNC_TIMEOUT", "5s")
	t.Setenv("APPS_SCRIPT_URL", "https://script.google.com/macros/s/abc/exec")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SYNC_BREAKER_MIN_REQUESTS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Path != "/tmp/school" || !cfg.Store.InMemory {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Sync.Timeout != 5*time.Second {
		t.Errorf("Sync.Timeout = %v", cfg.Sync.Timeout)
	}
	if cfg.Sync.EndpointURL != "https://script.google.com/macros/s/abc/exec" {
		t.Errorf("Sync.EndpointURL = %q", cfg.Sync.EndpointURL)
	}
	if cfg.Sync.BreakerMinRequests != 3 {
		t.Errorf("Sync.BreakerMinRequests = %d", cfg.Sync.BreakerMinRequests)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	yaml := `
school:
  name: Green Valley High
  current_session: 2024-25
server:
  port: 7000
store:
  compression: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.School.Name != "Green Valley High" || cfg.School.CurrentSession != "2024-25" {
		t.Errorf("School = %+v", cfg.School)
	}
	if !cfg.Store.Compression {
		t.Error("Store.Compression should come from the file")
	}
	if cfg.Server.Port != 7100 {
		t.Errorf("env should win over file, Server.Port = %d", cfg.Server.Port)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("SCHOOL_PHONE=555-0100\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(DotEnvPathEnvVar, path)
	_ = os.Unsetenv("SCHOOL_PHONE")
	t.Cleanup(func() { _ = os.Unsetenv("SCHOOL_PHONE") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.School.Phone != "555-0100" {
		t.Errorf("School.Phone = %q, want value from .env", cfg.School.Phone)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "HTTP_PORT", "70000"},
		{"bad endpoint scheme", "SYNC_ENDPOINT_URL", "ftp://example.com"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"zero timeout", "SYNC_TIMEOUT", "0s"},
		{"failure ratio above one", "SYNC_BREAKER_FAILURE_RATIO", "1.5"},
		{"negative slot cap", "STORE_MAX_SLOT_BYTES", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.key, tt.val)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"STORE_PATH":        "store.path",
		"http_port":         "server.port",
		"APPS_SCRIPT_URL":   "sync.endpoint_url",
		"CREDENTIAL_SECRET": "security.credential_secret",
		"HOME":              "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSettingsConversion(t *testing.T) {
	cfg := defaultConfig()
	st := cfg.Store.StoreSettings()
	if st.Path != cfg.Store.Path || st.GCRatio != cfg.Store.GCRatio || st.CloseTimeout != cfg.Store.CloseTimeout {
		t.Errorf("StoreSettings = %+v", st)
	}
	lg := cfg.Logging.LoggerSettings()
	if lg.Level != "info" || lg.Format != "json" || !lg.Timestamp {
		t.Errorf("LoggerSettings = %+v", lg)
	}
}

func TestInitialSystemConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.School.Name = "Green Valley"
	cfg.School.CurrentSession = "2024-25"
	cfg.Sync.EndpointURL = "https://script.google.com/macros/s/abc/exec"

	sc := cfg.InitialSystemConfig()
	if sc.SchoolName != "Green Valley" || sc.CurrentSession != "2024-25" || sc.Endpoint() != cfg.Sync.EndpointURL {
		t.Errorf("InitialSystemConfig = %+v", sc)
	}
	if err := sc.Validate(); err != nil {
		t.Errorf("seeded config invalid: %v", err)
	}
}
