package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/julianstephens/habitshare/internal/constants"
)

// ErrMissingAuthKey is fatal at client startup
var ErrMissingAuthKey = fmt.Errorf("%s is not set; the client cannot authenticate without the publishable key", constants.EnvAuthKey)

// Client holds everything the terminal client reads from its environment
type Client struct {
	APIURL      string
	RealtimeURL string
	AuthKey     string
	ConfigDir   string
	Debug       bool
}

// LoadClient reads the client configuration from the environment. A .env file
// in the working directory or the config directory is loaded first; real
// environment variables take precedence over both.
func LoadClient() (Client, error) {
	loadDotEnv(".env")
	dir := ExpandHome(getenv(constants.EnvConfigDir, constants.DefaultConfigDir))
	loadDotEnv(filepath.Join(dir, ".env"))

	cfg := Client{
		APIURL:      strings.TrimRight(getenv(constants.EnvAPIURL, constants.DefaultAPIURL), "/"),
		RealtimeURL: getenv(constants.EnvRealtimeURL, constants.DefaultRealtimeURL),
		AuthKey:     strings.TrimSpace(os.Getenv(constants.EnvAuthKey)),
		ConfigDir:   ExpandHome(getenv(constants.EnvConfigDir, constants.DefaultConfigDir)),
		Debug:       parseBool(os.Getenv(constants.EnvDebug)),
	}
	return cfg, cfg.Validate()
}

// Validate reports the first unusable setting
func (c Client) Validate() error {
	if c.AuthKey == "" {
		return ErrMissingAuthKey
	}
	if err := checkURL(c.APIURL, "http", "https"); err != nil {
		return fmt.Errorf("%s: %w", constants.EnvAPIURL, err)
	}
	if err := checkURL(c.RealtimeURL, "ws", "wss"); err != nil {
		return fmt.Errorf("%s: %w", constants.EnvRealtimeURL, err)
	}
	return nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%q must be an absolute %s URL", raw, strings.Join(schemes, "/"))
}

// loadDotEnv ignores a missing file; godotenv never overrides variables already set
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to read %s: %v\n", path, err)
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
