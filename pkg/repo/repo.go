package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/grove-vcs/grove/pkg/index"
	"github.com/grove-vcs/grove/pkg/object"
)

const groveDirName = ".grove"

// Repo represents an opened grove repository.
type Repo struct {
	RootDir  string        // working tree root
	GroveDir string        // .grove/ state directory
	Store    *object.Store // content-addressed object store
}

func (r *Repo) indexPath() string {
	return filepath.Join(r.GroveDir, "index")
}

func (r *Repo) loadIndex() (*index.Index, error) {
	return index.Load(r.indexPath())
}

// Open searches upward from path for a .grove/ directory and opens the
// repository. Returns an error if no .grove/ directory is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		groveDir := filepath.Join(cur, groveDirName)
		info, err := os.Stat(groveDir)
		if err == nil && info.IsDir() {
			return &Repo{
				RootDir:  cur,
				GroveDir: groveDir,
				Store:    object.NewStore(groveDir),
			}, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not a grove repository (or any parent up to /)")
		}
		cur = parent
	}
}
