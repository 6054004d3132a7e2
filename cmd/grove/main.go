package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grove-vcs/grove/pkg/trace"
)

func main() {
	root := &cobra.Command{
		Use:   "grove",
		Short: "Content-addressed version control built on tree snapshots",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			trace.Event("cmd.dispatch").Str("name", cmd.Name()).Send()
		},
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newHashObjectCmd())
	root.AddCommand(newCatFileCmd())
	root.AddCommand(newLsTreeCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newWriteTreeCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newCommitCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newBranchCmd())
	root.AddCommand(newTagCmd())
	root.AddCommand(newConfigCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "grove 0.1.0-dev")
		},
	}
}
