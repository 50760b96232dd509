package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvToken    = "BOT_TOKEN"
	EnvPassword = "SYSTEM_PASSWORD"
	EnvAdmin    = "ADMIN_USER_ID"
	EnvLanguage = "DISPATCHBOT_LANGUAGE"
)

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// DotEnvPaths returns the .env candidates for a config file: the one next to
// it, then the working directory's.
func DotEnvPaths(configPath string) []string {
	near := filepath.Join(filepath.Dir(configPath), ".env")
	if filepath.Clean(near) == ".env" {
		return []string{".env"}
	}
	return []string{near, ".env"}
}

// ApplyEnv overrides secrets and a few settings from lookup (os.LookupEnv in
// production).
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(k string) (string, bool) {
		v, ok := lookup(k)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if v, ok := get(EnvToken); ok {
		cfg.Telegram.Token = v
	}
	if v, ok := get(EnvPassword); ok {
		cfg.Access.Password = v
	}
	if v, ok := get(EnvAdmin); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid user id %q", EnvAdmin, v)
		}
		cfg.Telegram.AdminUserID = id
	}
	if v, ok := get(EnvLanguage); ok {
		cfg.Languages.Default = v
	}
	return nil
}
