package main

import (
	"fmt"
	"io"
	"strings"

	"celltab/cmd/celltab/prim"

	"github.com/spf13/cobra"
)

func newListCommand(a *app) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List primitives in table order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			prims := reg.All()
			if kind != "" {
				k, err := prim.ParseKind(kind)
				if err != nil {
					return err
				}
				prims = reg.ByKind(k)
			}
			printPrimitives(cmd.OutOrStdout(), prims)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only list one kind: combinational, latch or flip-flop")
	return cmd
}

// printPrimitives prints one aligned line per primitive: name, kind and pins.
func printPrimitives(w io.Writer, prims []*prim.Primitive) {
	if len(prims) == 0 {
		fmt.Fprintln(w, "no primitives found")
		return
	}

	maxLen := 0
	for _, p := range prims {
		if n := len(p.Name()); n > maxLen {
			maxLen = n
		}
	}

	for _, p := range prims {
		fmt.Fprintf(w, "%-*s  %-13s  %s <- %s\n", maxLen, p.Name(), p.Kind(),
			strings.Join(p.Outputs(), ","), strings.Join(p.Inputs(), ","))
	}
}
