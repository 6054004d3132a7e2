package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/grove-vcs/grove/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			st, err := r.Status()
			if err != nil {
				return err
			}

			p := newPalette("")
			out := cmd.OutOrStdout()

			switch {
			case st.Branch == "":
				fmt.Fprintf(out, "HEAD detached at %s\n", st.HeadID.Short())
			case st.HeadID.IsZero():
				fmt.Fprintf(out, "on %s (no commits yet)\n", p.paint(p.branch, st.Branch))
			default:
				fmt.Fprintf(out, "on %s\n", p.paint(p.branch, st.Branch))
			}

			printChangeSection(out, p, p.add, "staged:", st.Staged)
			printChangeSection(out, p, p.del, "unstaged:", st.Unstaged)

			if len(st.Untracked) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "untracked:")
				for _, path := range st.Untracked {
					fmt.Fprintf(out, "  %s\n", p.paint(p.del, path))
				}
			}

			if len(st.Staged) == 0 && len(st.Unstaged) == 0 && len(st.Untracked) == 0 {
				fmt.Fprintln(out, "nothing to commit, working tree clean")
			}
			return nil
		},
	}
}

func printChangeSection(out io.Writer, p *palette, style lipgloss.Style, header string, changes []repo.Change) {
	if len(changes) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, header)
	for _, c := range changes {
		line := fmt.Sprintf("%c %s", changeMarker(c.Kind), c.Path)
		fmt.Fprintf(out, "  %s\n", p.paint(style, line))
	}
}

func changeMarker(k repo.ChangeKind) byte {
	switch k {
	case repo.ChangeAdded:
		return '+'
	case repo.ChangeDeleted:
		return '-'
	default:
		return '~'
	}
}
