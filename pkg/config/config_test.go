package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIID, EnvAPISecret, EnvPort, EnvProxyURL} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != DefaultPort || cfg.Server.Host != DefaultHost {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Client.PerPage != 25 || cfg.Client.VirtualHosts != "EXCLUDE" || cfg.Client.Sort != "RELEVANCE" {
		t.Errorf("unexpected client defaults: %+v", cfg.Client)
	}
	if cfg.HasCredentials() {
		t.Error("expected no credentials")
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
port = 9090

[censys]
api_id = "id"
api_secret = "secret"

[client]
per_page = 50
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.Host != DefaultHost {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if !cfg.HasCredentials() {
		t.Error("expected credentials")
	}
	if cfg.Client.PerPage != 50 || cfg.Client.Sort != "RELEVANCE" {
		t.Errorf("unexpected client config: %+v", cfg.Client)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[censys]\napi_id = \"file\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvAPIID, "env-id")
	t.Setenv(EnvAPISecret, "env-secret")
	t.Setenv(EnvPort, "3001")
	t.Setenv(EnvProxyURL, "http://proxy.example.com/")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Censys.APIID != "env-id" || cfg.Censys.APISecret != "env-secret" {
		t.Errorf("env credentials not applied: %+v", cfg.Censys)
	}
	if cfg.Server.Port != 3001 {
		t.Errorf("expected port 3001, got %d", cfg.Server.Port)
	}
	if cfg.ProxyURL() != "http://proxy.example.com" {
		t.Errorf("unexpected proxy url %q", cfg.ProxyURL())
	}
}

func TestLoadConfigErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("[server\nport ="), 0600)
	if _, err := LoadConfig(bad); err == nil {
		t.Error("expected error for malformed toml")
	}

	port := filepath.Join(dir, "port.toml")
	os.WriteFile(port, []byte("[server]\nport = 70000\n"), 0600)
	if _, err := LoadConfig(port); err == nil || !strings.Contains(err.Error(), "invalid server port") {
		t.Errorf("expected invalid port error, got %v", err)
	}

	t.Setenv(EnvPort, "eighty")
	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
}

func TestProxyURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"derived", Config{Server: ServerConfig{Host: "127.0.0.1", Port: 8080}}, "http://127.0.0.1:8080"},
		{"wildcard host", Config{Server: ServerConfig{Host: "0.0.0.0", Port: 3001}}, "http://localhost:3001"},
		{"ipv6 wildcard", Config{Server: ServerConfig{Host: "::", Port: 3001}}, "http://localhost:3001"},
		{"explicit", Config{Client: ClientConfig{ProxyURL: "https://hosts.example.com/"}}, "https://hosts.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ProxyURL(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSaveTemplateConfigParses(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := SaveTemplateConfig(path); err != nil {
		t.Fatalf("SaveTemplateConfig: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if *cfg != *GetDefaultConfig() {
		t.Errorf("sample differs from defaults: %+v", cfg)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := GetDefaultConfig()
	cfg.Censys.APIID = "id"
	cfg.Censys.APISecret = "secret"

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600, got %v", info.Mode().Perm())
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *cfg {
		t.Errorf("got %+v, want %+v", loaded, cfg)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join("/tmp/xdg", "hostsearch", "config.toml") {
		t.Errorf("unexpected path %q", path)
	}
}

func TestWatchReloads(t *testing.T) {
	clearEnv(t)
	settleDelay = 10 * time.Millisecond

	path := filepath.Join(t.TempDir(), "config.toml")
	write := func(id string) {
		cfg := GetDefaultConfig()
		cfg.Censys.APIID = id
		data, err := toml.Marshal(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			t.Fatal(err)
		}
	}
	write("first")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { reloaded <- c })
	}()

	// The watcher registers asynchronously; keep writing until it reports.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Censys.APIID != "second" {
				t.Fatalf("expected reloaded id, got %q", cfg.Censys.APIID)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch: %v", err)
			}
			return
		case <-tick.C:
			write("second")
		case <-deadline:
			t.Fatal("config was not reloaded")
		}
	}
}

func TestWatchMissingFile(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing.toml"), func(*Config) {})
	if err == nil {
		t.Fatal("expected error watching a missing file")
	}
}
