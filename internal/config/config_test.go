package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitshare/internal/constants"
)

func clearClientEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{constants.EnvAPIURL, constants.EnvRealtimeURL, constants.EnvAuthKey, constants.EnvDebug} {
		t.Setenv(k, "")
	}
	t.Setenv(constants.EnvConfigDir, t.TempDir())
	t.Chdir(t.TempDir())
}

func TestLoadClientMissingAuthKey(t *testing.T) {
	clearClientEnv(t)

	_, err := LoadClient()
	if !errors.Is(err, ErrMissingAuthKey) {
		t.Errorf("LoadClient() error = %v, want ErrMissingAuthKey", err)
	}
}

func TestLoadClientDefaults(t *testing.T) {
	clearClientEnv(t)
	t.Setenv(constants.EnvAuthKey, "pk_test")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}
	if cfg.APIURL != constants.DefaultAPIURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, constants.DefaultAPIURL)
	}
	if cfg.RealtimeURL != constants.DefaultRealtimeURL {
		t.Errorf("RealtimeURL = %q, want %q", cfg.RealtimeURL, constants.DefaultRealtimeURL)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestLoadClientDotEnv(t *testing.T) {
	clearClientEnv(t)
	dir := os.Getenv(constants.EnvConfigDir)
	content := "HABITSHARE_AUTH_KEY=pk_from_file\nHABITSHARE_API_URL=https://api.example.com/\nHABITSHARE_DEBUG=true\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	// os.Unsetenv so godotenv is allowed to fill them in
	os.Unsetenv(constants.EnvAuthKey)
	os.Unsetenv(constants.EnvAPIURL)
	os.Unsetenv(constants.EnvDebug)

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}
	if cfg.AuthKey != "pk_from_file" {
		t.Errorf("AuthKey = %q", cfg.AuthKey)
	}
	if cfg.APIURL != "https://api.example.com" {
		t.Errorf("APIURL = %q, trailing slash should be trimmed", cfg.APIURL)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestClientValidate(t *testing.T) {
	base := Client{APIURL: "http://localhost:4000", RealtimeURL: "ws://localhost:4000/rt", AuthKey: "pk"}

	tests := []struct {
		name    string
		mutate  func(*Client)
		wantErr bool
	}{
		{"valid", func(*Client) {}, false},
		{"no key", func(c *Client) { c.AuthKey = "" }, true},
		{"relative api url", func(c *Client) { c.APIURL = "/api" }, true},
		{"http realtime url", func(c *Client) { c.RealtimeURL = "http://localhost/rt" }, true},
		{"wss realtime url", func(c *Client) { c.RealtimeURL = "wss://rt.example.com/rt" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadServer(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{constants.EnvServerListen, constants.EnvServerDatabase, constants.EnvServerJWTSecret,
		constants.EnvServerPubKey, constants.EnvServerTokenTTL, constants.EnvServerRealtimeDir, constants.EnvServerDebug} {
		t.Setenv(k, "")
	}

	path := filepath.Join(t.TempDir(), "habitshared.yaml")
	yml := `listen: ":9000"
database: /tmp/h.db
jwt_secret: from-file-secret-0123
publishable_key: pk_file
token_ttl: 2h
write_rate: 1.5
write_burst: 3
`
	if err := os.WriteFile(path, []byte(yml), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(constants.EnvServerListen, ":9100")
	t.Setenv(constants.EnvServerTokenTTL, "30m")

	cfg, err := LoadServer(path)
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.Listen != ":9100" {
		t.Errorf("Listen = %q, env should win over file", cfg.Listen)
	}
	if cfg.Database != "/tmp/h.db" {
		t.Errorf("Database = %q", cfg.Database)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("TokenTTL = %v, want 30m", cfg.TokenTTL)
	}
	if cfg.WriteRate != 1.5 || cfg.WriteBurst != 3 {
		t.Errorf("rate = %v/%d", cfg.WriteRate, cfg.WriteBurst)
	}
	if cfg.MaxChatSize != constants.DefaultMaxChatSize {
		t.Errorf("MaxChatSize = %d, default should survive partial file", cfg.MaxChatSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadServerBadTTL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(constants.EnvServerTokenTTL, "soon")
	if _, err := LoadServer(""); err == nil {
		t.Error("LoadServer() should reject an unparseable TTL")
	}
}

func TestServerValidate(t *testing.T) {
	cfg := DefaultServer()
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "jwt_secret") || !strings.Contains(err.Error(), "publishable_key") {
		t.Errorf("Validate() error = %v, want both missing settings named", err)
	}

	cfg.JWTSecret = "short"
	cfg.PublishableKey = "pk"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a short secret")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/x/y"); got != filepath.Join(home, "x/y") {
		t.Errorf("ExpandHome() = %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandHome() = %q", got)
	}
}
