package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/grove-vcs/grove/pkg/object"
	"github.com/grove-vcs/grove/pkg/repo"
)

func newHashObjectCmd() *cobra.Command {
	var write bool
	var useStdin bool

	cmd := &cobra.Command{
		Use:   "hash-object [file]",
		Short: "Compute a blob id, optionally storing the blob",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			switch {
			case useStdin:
				data, err = io.ReadAll(cmd.InOrStdin())
			case len(args) == 1:
				data, err = os.ReadFile(args[0])
			default:
				return fmt.Errorf("hash-object: need a file argument or --stdin")
			}
			if err != nil {
				return err
			}

			if !write {
				fmt.Fprintln(cmd.OutOrStdout(), object.HashObject(object.KindBlob, data))
				return nil
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			id, err := r.Store.WriteBlob(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "store the blob in the object database")
	cmd.Flags().BoolVar(&useStdin, "stdin", false, "read content from standard input")

	return cmd
}
