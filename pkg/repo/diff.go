package repo

import (
	"fmt"

	"github.com/grove-vcs/grove/pkg/diff"
	"github.com/grove-vcs/grove/pkg/object"
)

// diffOptions fills in options a caller left nil, seeding context and
// interhunk sizes from the user config's [diff] section when present.
func (r *Repo) diffOptions(opts *diff.Options) *diff.Options {
	if opts != nil {
		return opts
	}
	o := &diff.Options{
		ContextLines:   diff.DefaultContextLines,
		InterhunkLines: diff.DefaultInterhunkLines,
	}
	if ucfg, err := LoadUserConfig(); err == nil {
		if ucfg.Diff.Context != nil {
			o.ContextLines = *ucfg.Diff.Context
		}
		if ucfg.Diff.Interhunk != nil {
			o.InterhunkLines = *ucfg.Diff.Interhunk
		}
	}
	return o
}

// DiffTreeToTree compares two trees. Either tree may be nil for the
// empty tree; swap exchanges the sides.
func (r *Repo) DiffTreeToTree(oldTree, newTree *object.Tree, opts *diff.Options, swap bool) (*diff.Diff, error) {
	return diff.TreeToTree(oldTree, newTree, r.diffOptions(opts), swap)
}

// DiffTreeToIndex compares a tree against the staged index.
func (r *Repo) DiffTreeToIndex(tree *object.Tree, opts *diff.Options) (*diff.Diff, error) {
	ix, err := r.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("diff index: %w", err)
	}
	return diff.TreeToIndex(tree, ix, r.diffOptions(opts))
}

// DiffTreeToWorkdir compares a tree against the working directory,
// honoring .groveignore rules.
func (r *Repo) DiffTreeToWorkdir(tree *object.Tree, opts *diff.Options) (*diff.Diff, error) {
	wd := diff.Workdir{
		Root:   r.RootDir,
		Ignore: NewIgnoreChecker(r.RootDir).IsIgnored,
	}
	return diff.TreeToWorkdir(tree, wd, r.diffOptions(opts))
}
