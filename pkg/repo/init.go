package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/grove-vcs/grove/pkg/object"
)

// Init creates a new grove repository at path. It creates the .grove/
// directory structure (HEAD, objects/, refs/heads/, logs/, config) and
// stores the empty tree object so unborn-branch diffs have a base.
// Returns an error if a .grove/ directory already exists.
func Init(path string) (*Repo, error) {
	groveDir := filepath.Join(path, groveDirName)

	if _, err := os.Stat(groveDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", groveDir)
	}

	dirs := []string{
		filepath.Join(groveDir, "objects"),
		filepath.Join(groveDir, "refs", "heads"),
		filepath.Join(groveDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(groveDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	cfg := ini.Empty()
	cfg.Section("core").Key("repositoryformatversion").SetValue("0")
	cfg.Section("core").Key("filemode").SetValue("true")
	if err := cfg.SaveTo(filepath.Join(groveDir, "config")); err != nil {
		return nil, fmt.Errorf("init: write config: %w", err)
	}

	r := &Repo{
		RootDir:  path,
		GroveDir: groveDir,
		Store:    object.NewStore(groveDir),
	}

	if _, err := r.Store.WriteTree(nil); err != nil {
		return nil, fmt.Errorf("init: write empty tree: %w", err)
	}

	return r, nil
}
