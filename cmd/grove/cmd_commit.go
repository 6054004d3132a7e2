package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grove-vcs/grove/pkg/repo"
)

func newCommitCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the staged tree as a new commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			id, err := r.Commit(message)
			if err != nil {
				return err
			}

			branch, err := r.CurrentBranch()
			if err != nil || branch == "" {
				branch = "detached HEAD"
			}

			summary := message
			if i := strings.IndexByte(summary, '\n'); i >= 0 {
				summary = summary[:i]
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, id.Short(), summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")

	return cmd
}
