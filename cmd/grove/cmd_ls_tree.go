package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grove-vcs/grove/pkg/object"
	"github.com/grove-vcs/grove/pkg/repo"
)

type lsTreeOpts struct {
	recurse  bool
	dirsOnly bool
	trees    bool
	colors   *palette
}

func newLsTreeCmd() *cobra.Command {
	var opts lsTreeOpts
	var colorMode string

	cmd := &cobra.Command{
		Use:   "ls-tree <tree-ish> [path]",
		Short: "List the contents of a tree object",
		Long: `List the contents of a tree object, one entry per line as
"<mode> <kind> <id>\t<name>". A path argument narrows the listing to
that entry; naming a subtree lists its contents.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			tree, err := r.ResolveTreeish(args[0])
			if err != nil {
				return err
			}

			opts.colors = newPalette(colorMode)
			out := cmd.OutOrStdout()

			prefix := ""
			if len(args) == 2 {
				path := strings.Trim(args[1], "/")
				e, err := tree.EntryByPath(path)
				if err != nil {
					return err
				}
				if e.Kind() != object.KindTree {
					printTreeEntry(out, e, path, opts.colors)
					return nil
				}
				tree, err = e.Tree()
				if err != nil {
					return err
				}
				prefix = path
			}

			return lsTree(out, tree, prefix, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.recurse, "recurse", "r", false, "recurse into subtrees")
	cmd.Flags().BoolVarP(&opts.dirsOnly, "dirs-only", "d", false, "show only tree entries")
	cmd.Flags().BoolVarP(&opts.trees, "show-trees", "t", false, "show tree entries while recursing")
	cmd.Flags().StringVar(&colorMode, "color", "auto", "colorize output (auto, always, never)")

	return cmd
}

func lsTree(out io.Writer, t *object.Tree, prefix string, opts lsTreeOpts) error {
	it := t.Iter()
	for e, ok := it.Next(); ok; e, ok = it.Next() {
		path := e.Name()
		if prefix != "" {
			path = prefix + "/" + e.Name()
		}

		if e.Kind() == object.KindTree {
			if !opts.recurse || opts.trees || opts.dirsOnly {
				printTreeEntry(out, e, path, opts.colors)
			}
			if opts.recurse {
				sub, err := e.Tree()
				if err != nil {
					return err
				}
				if err := lsTree(out, sub, path, opts); err != nil {
					return err
				}
			}
			continue
		}

		if opts.dirsOnly {
			continue
		}
		printTreeEntry(out, e, path, opts.colors)
	}
	return nil
}

func printTreeEntry(out io.Writer, e *object.Entry, path string, p *palette) {
	name := path
	if e.Kind() == object.KindTree {
		name = p.paint(p.tree, path)
	}
	fmt.Fprintf(out, "%06o %s %s\t%s\n", uint32(e.Mode()), e.Kind(), e.ID(), name)
}
