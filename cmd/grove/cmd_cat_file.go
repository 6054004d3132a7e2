package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grove-vcs/grove/pkg/object"
	"github.com/grove-vcs/grove/pkg/repo"
)

func newCatFileCmd() *cobra.Command {
	var showType bool
	var showSize bool
	var pretty bool

	cmd := &cobra.Command{
		Use:   "cat-file (-t | -s | -p) <object>",
		Short: "Inspect an object in the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modes := 0
			for _, set := range []bool{showType, showSize, pretty} {
				if set {
					modes++
				}
			}
			if modes != 1 {
				return fmt.Errorf("cat-file: exactly one of -t, -s, -p is required")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			id, err := r.ResolveID(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showType || showSize {
				kind, size, err := r.Store.Stat(id)
				if err != nil {
					return err
				}
				if showType {
					fmt.Fprintln(out, kind)
				} else {
					fmt.Fprintln(out, size)
				}
				return nil
			}

			obj, err := r.Store.LookupObject(id)
			if err != nil {
				return err
			}
			return prettyPrintObject(out, obj)
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object kind")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the content size in bytes")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content")

	return cmd
}

func prettyPrintObject(out io.Writer, obj object.Object) error {
	switch o := obj.(type) {
	case *object.Blob:
		_, err := out.Write(o.Data())
		return err
	case *object.Tree:
		it := o.Iter()
		for e, ok := it.Next(); ok; e, ok = it.Next() {
			fmt.Fprintf(out, "%06o %s %s\t%s\n", uint32(e.Mode()), e.Kind(), e.ID(), e.Name())
		}
		return nil
	case *object.Commit:
		fmt.Fprintf(out, "tree %s\n", o.TreeID)
		for _, p := range o.Parents {
			fmt.Fprintf(out, "parent %s\n", p)
		}
		fmt.Fprintf(out, "author %s\n", formatSignature(o.Author))
		fmt.Fprintf(out, "committer %s\n", formatSignature(o.Committer))
		fmt.Fprintln(out)
		fmt.Fprint(out, o.Message)
		if !strings.HasSuffix(o.Message, "\n") {
			fmt.Fprintln(out)
		}
		return nil
	default:
		return fmt.Errorf("cat-file: unknown object kind %s", obj.Kind())
	}
}

func formatSignature(s object.Signature) string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When.Unix(), s.When.Format("-0700"))
}
