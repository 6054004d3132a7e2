package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grove-vcs/grove/pkg/repo"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config <name> [value]",
		Short: "Get or set a repository config value",
		Long: `Get or set a value in the repository config file. Names are
dotted section.key pairs, e.g. "user.name".`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if len(args) == 1 {
				value, err := r.ConfigGet(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}
			return r.ConfigSet(args[0], args[1])
		},
	}
}
