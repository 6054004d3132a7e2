package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Fallback identity used when neither the repository config nor the user
// config names an author.
const (
	defaultAuthorName  = "grove"
	defaultAuthorEmail = "grove@localhost"
)

func (r *Repo) configPath() string {
	return filepath.Join(r.GroveDir, "config")
}

// loadConfig reads .grove/config. A missing file loads as an empty config.
func (r *Repo) loadConfig() (*ini.File, error) {
	cfg, err := ini.Load(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return ini.Empty(), nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// ConfigGet returns the value stored under a dotted "section.key" name in
// .grove/config. A missing key is an error.
func (r *Repo) ConfigGet(key string) (string, error) {
	section, name, err := splitConfigKey(key)
	if err != nil {
		return "", err
	}

	cfg, err := r.loadConfig()
	if err != nil {
		return "", err
	}
	val := cfg.Section(section).Key(name).String()
	if val == "" {
		return "", fmt.Errorf("config key not found: %s", key)
	}
	return val, nil
}

// ConfigSet stores a value under a dotted "section.key" name in
// .grove/config, creating the file if needed.
func (r *Repo) ConfigSet(key, value string) error {
	section, name, err := splitConfigKey(key)
	if err != nil {
		return err
	}

	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}
	cfg.Section(section).Key(name).SetValue(value)
	if err := cfg.SaveTo(r.configPath()); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func splitConfigKey(key string) (section, name string, err error) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid config key %q (want section.key)", key)
	}
	return parts[0], parts[1], nil
}

// authorIdentity resolves the commit author. The repository config wins
// over the user config; with neither set, a fixed local identity is used.
func (r *Repo) authorIdentity() (name, email string) {
	name = defaultAuthorName
	email = defaultAuthorEmail

	if ucfg, err := LoadUserConfig(); err == nil {
		if ucfg.User.Name != "" {
			name = ucfg.User.Name
		}
		if ucfg.User.Email != "" {
			email = ucfg.User.Email
		}
	}

	if cfg, err := r.loadConfig(); err == nil {
		if v := cfg.Section("user").Key("name").String(); v != "" {
			name = v
		}
		if v := cfg.Section("user").Key("email").String(); v != "" {
			email = v
		}
	}
	return name, email
}
