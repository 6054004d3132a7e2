package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grove-vcs/grove/pkg/object"
	"github.com/grove-vcs/grove/pkg/repo"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			headID, err := r.ResolveRef("HEAD")
			if err != nil {
				return fmt.Errorf("cannot resolve HEAD: %w", err)
			}

			commits, err := r.Log(headID, limit)
			if err != nil {
				return err
			}
			if len(commits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no commits yet")
				return nil
			}

			branch, _ := r.CurrentBranch()

			out := cmd.OutOrStdout()
			for _, c := range commits {
				decoration := buildDecoration(c.ID(), headID, branch)

				if oneline {
					summary := c.Message
					if i := strings.IndexByte(summary, '\n'); i >= 0 {
						summary = summary[:i]
					}
					if decoration != "" {
						fmt.Fprintf(out, "%s %s %s\n", c.ID().Short(), decoration, summary)
					} else {
						fmt.Fprintf(out, "%s %s\n", c.ID().Short(), summary)
					}
					continue
				}

				if decoration != "" {
					fmt.Fprintf(out, "commit %s %s\n", c.ID(), decoration)
				} else {
					fmt.Fprintf(out, "commit %s\n", c.ID())
				}
				fmt.Fprintf(out, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
				fmt.Fprintf(out, "Date:   %s\n", c.Author.When.Format("2006-01-02 15:04:05 -0700"))
				fmt.Fprintln(out)
				for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits to show")

	return cmd
}

// buildDecoration returns "(HEAD -> main)" for the commit HEAD points
// at, "(HEAD)" when detached, and "" for everything else.
func buildDecoration(commitID, headID object.OID, branch string) string {
	if commitID != headID {
		return ""
	}
	if branch != "" {
		return "(HEAD -> " + branch + ")"
	}
	return "(HEAD)"
}
