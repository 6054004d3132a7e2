package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// UserConfig holds user-level settings shared across repositories,
// stored as TOML at ~/.config/grove/config.toml. The GROVE_CONFIG
// environment variable overrides the location.
type UserConfig struct {
	User UserIdentity `toml:"user"`
	Diff DiffDefaults `toml:"diff"`
}

type UserIdentity struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// DiffDefaults seeds diff options when a command does not set them.
// Context and Interhunk are pointers so an absent key stays
// distinguishable from an explicit zero.
type DiffDefaults struct {
	Context   *int   `toml:"context"`
	Interhunk *int   `toml:"interhunk"`
	Color     string `toml:"color"`
}

// UserConfigPath returns the location of the user config file.
func UserConfigPath() (string, error) {
	if p := os.Getenv("GROVE_CONFIG"); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config: %w", err)
	}
	return filepath.Join(base, "grove", "config.toml"), nil
}

// LoadUserConfig reads the user config file. A missing file loads as an
// empty config.
func LoadUserConfig() (*UserConfig, error) {
	path, err := UserConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg UserConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("user config %s: %w", path, err)
	}
	return &cfg, nil
}
