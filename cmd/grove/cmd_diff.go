package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grove-vcs/grove/pkg/diff"
	"github.com/grove-vcs/grove/pkg/object"
	"github.com/grove-vcs/grove/pkg/repo"
)

func newDiffCmd() *cobra.Command {
	var (
		cached    bool
		context   int
		interhunk int
		swap      bool
		stat      bool
		untracked bool
		ignored   bool
		colorMode string
	)

	cmd := &cobra.Command{
		Use:   "diff [--cached] [<tree-ish> [<tree-ish>]]",
		Short: "Show changes between trees, the index, and the working tree",
		Long: `Show changes as unified patch text. With no arguments the HEAD tree
is compared against the working tree; --cached compares it against the
index; one tree-ish compares that tree against the working tree; two
tree-ishes compare the trees directly.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			opts := &diff.Options{
				ContextLines:   context,
				InterhunkLines: interhunk,
			}
			if untracked {
				opts.Flags |= diff.IncludeUntracked | diff.RecurseUntrackedDirs
			}
			if ignored {
				opts.Flags |= diff.IncludeIgnored
			}
			// Flags left at their defaults defer to the user config.
			if cfg, err := repo.LoadUserConfig(); err == nil {
				if !cmd.Flags().Changed("unified") && cfg.Diff.Context != nil {
					opts.ContextLines = *cfg.Diff.Context
				}
				if !cmd.Flags().Changed("interhunk") && cfg.Diff.Interhunk != nil {
					opts.InterhunkLines = *cfg.Diff.Interhunk
				}
			}

			if swap && len(args) != 2 {
				return fmt.Errorf("diff: --swap requires two tree-ish arguments")
			}

			var d *diff.Diff
			switch {
			case cached:
				if len(args) > 1 {
					return fmt.Errorf("diff: --cached takes at most one tree-ish")
				}
				tree, err := baseTree(r, args)
				if err != nil {
					return err
				}
				d, err = r.DiffTreeToIndex(tree, opts)
				if err != nil {
					return err
				}
			case len(args) == 2:
				oldTree, err := r.ResolveTreeish(args[0])
				if err != nil {
					return err
				}
				newTree, err := r.ResolveTreeish(args[1])
				if err != nil {
					return err
				}
				d, err = r.DiffTreeToTree(oldTree, newTree, opts, swap)
				if err != nil {
					return err
				}
			default:
				tree, err := baseTree(r, args)
				if err != nil {
					return err
				}
				d, err = r.DiffTreeToWorkdir(tree, opts)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if stat {
				writeDiffStat(out, d)
				return nil
			}

			p := newPalette(colorMode)
			writePatch(out, p, d.Patch())
			writeContentlessDeltas(out, p, d)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "compare the tree against the index")
	cmd.Flags().IntVarP(&context, "unified", "U", diff.DefaultContextLines, "lines of context around changes")
	cmd.Flags().IntVar(&interhunk, "interhunk", diff.DefaultInterhunkLines, "merge hunks closer than this many lines")
	cmd.Flags().BoolVar(&swap, "swap", false, "reverse the sides of a tree-to-tree diff")
	cmd.Flags().BoolVar(&stat, "stat", false, "show a diffstat instead of patch text")
	cmd.Flags().BoolVar(&untracked, "untracked", false, "list untracked files")
	cmd.Flags().BoolVar(&ignored, "ignored", false, "list ignored files")
	cmd.Flags().StringVar(&colorMode, "color", "auto", "colorize output (auto, always, never)")

	return cmd
}

// baseTree resolves the comparison base: the named tree-ish, or the
// HEAD tree (empty on an unborn branch) when no argument is given.
func baseTree(r *repo.Repo, args []string) (*object.Tree, error) {
	if len(args) > 0 {
		return r.ResolveTreeish(args[0])
	}
	return r.HeadTree()
}

// writePatch colorizes rendered patch text line by line. Prefix order
// matters: file headers start with "---"/"+++" and must not be painted
// as removals or additions.
func writePatch(out io.Writer, p *palette, patch string) {
	if !p.enabled {
		io.WriteString(out, patch)
		return
	}

	for _, line := range strings.SplitAfter(patch, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, "diff --grove "),
			strings.HasPrefix(text, "index "),
			strings.HasPrefix(text, "new file mode "),
			strings.HasPrefix(text, "deleted file mode "),
			strings.HasPrefix(text, "old mode "),
			strings.HasPrefix(text, "new mode "),
			strings.HasPrefix(text, "Binary files "),
			strings.HasPrefix(text, "--- "),
			strings.HasPrefix(text, "+++ "):
			text = p.paint(p.meta, text)
		case strings.HasPrefix(text, "@@"):
			text = p.paint(p.hunk, text)
		case strings.HasPrefix(text, "+"):
			text = p.paint(p.add, text)
		case strings.HasPrefix(text, "-"):
			text = p.paint(p.del, text)
		}
		fmt.Fprintln(out, text)
	}
}

// writeContentlessDeltas lists untracked and ignored paths after the
// patch, one status letter per line. These deltas carry no hunks, so
// the patch body never mentions them.
func writeContentlessDeltas(out io.Writer, p *palette, d *diff.Diff) {
	for i := range d.Deltas {
		delta := &d.Deltas[i]
		switch delta.Status {
		case diff.Untracked, diff.Ignored:
			line := fmt.Sprintf("%c %s", delta.Status.Letter(), delta.Path())
			fmt.Fprintln(out, p.paint(p.del, line))
		}
	}
}

const diffStatBarWidth = 40

func writeDiffStat(out io.Writer, d *diff.Diff) {
	type fileStat struct {
		path string
		ins  int
		dels int
	}

	var files []fileStat
	width := 0
	for i := range d.Deltas {
		delta := &d.Deltas[i]
		switch delta.Status {
		case diff.Untracked, diff.Ignored:
			continue
		}
		fs := fileStat{path: delta.Path()}
		for _, h := range delta.Hunks {
			for _, l := range h.Lines {
				switch l.Origin {
				case '+':
					fs.ins++
				case '-':
					fs.dels++
				}
			}
		}
		if len(fs.path) > width {
			width = len(fs.path)
		}
		files = append(files, fs)
	}

	for _, fs := range files {
		total := fs.ins + fs.dels
		bar := strings.Repeat("+", fs.ins) + strings.Repeat("-", fs.dels)
		if total > diffStatBarWidth {
			scaledIns := fs.ins * diffStatBarWidth / total
			scaledDels := fs.dels * diffStatBarWidth / total
			bar = strings.Repeat("+", scaledIns) + strings.Repeat("-", scaledDels)
		}
		fmt.Fprintf(out, " %-*s | %d %s\n", width, fs.path, total, bar)
	}
	if len(files) > 0 {
		fmt.Fprintf(out, " %s\n", d.Stats())
	}
}
