// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept in the config file; the client secret is
// sourced from the environment, and tokens live in the OS keychain.
// Environment variables (PASSGATE_*) override file values.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"passgate/cli/internal/xdg"
)

// Config holds CLI settings for reaching the authorization server.
type Config struct {
	BaseURL               string `json:"base_url"                 env:"PASSGATE_BASE_URL"`
	ClientID              string `json:"client_id"                env:"PASSGATE_CLIENT_ID"`
	ClientSecret          string `json:"-"                        env:"PASSGATE_CLIENT_SECRET"`
	UserInfoPath          string `json:"user_info_path"           env:"PASSGATE_USER_INFO_PATH"`
	RevokePath            string `json:"revoke_path"              env:"PASSGATE_REVOKE_PATH"`
	AutoRefresh           bool   `json:"auto_refresh"             env:"PASSGATE_AUTO_REFRESH"`
	PreFetchWindowSeconds int    `json:"pre_fetch_window_seconds" env:"PASSGATE_PRE_FETCH_WINDOW_SECONDS"`
	LogLevel              string `json:"log_level"                env:"PASSGATE_LOG_LEVEL"`
}

// defaults returns the baseline configuration applied before the file and
// environment are consulted.
func defaults() Config {
	return Config{
		UserInfoPath:          "/oauth/userinfo",
		AutoRefresh:           true,
		PreFetchWindowSeconds: 60,
		LogLevel:              "info",
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; a missing file yields defaults. Environment
// variables override whatever the file provides.
func Load() (Config, error) {
	c := defaults()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, err
	}
	if err == nil {
		if err := json.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}
	if err := env.Parse(&c); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes configuration with 0600 permissions. The client secret carries
// the json:"-" tag and is never written.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
