package main

import (
	"fmt"
	"strings"

	"celltab/cmd/celltab/prim"
	"celltab/pkg/lib"

	"github.com/spf13/cobra"
)

func newEquivCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "equiv A B",
		Short: "Check whether two expressions are logically equivalent",
		Long: "Check whether two boolean expressions agree under every input assignment.\n\n" +
			"Each operand is either an expression or NAME.PIN, the function driving\n" +
			"output PIN of primitive NAME, e.g.\n\n" +
			"  " + appName + " equiv XOR2.Y '(A|B)&!(A&B)'\n\n" +
			"Exits with status 1 when the expressions differ.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reg *prim.Registry
			lookup := func(name string) (*prim.Primitive, error) {
				if reg == nil {
					var err error
					if reg, err = a.registry(cmd.Context()); err != nil {
						return nil, err
					}
				}
				return reg.Lookup(name)
			}

			x, err := equivOperand(args[0], a.cfg.Limits.MaxDepth, lookup)
			if err != nil {
				return err
			}
			y, err := equivOperand(args[1], a.cfg.Limits.MaxDepth, lookup)
			if err != nil {
				return err
			}

			if prim.Equivalent(x, y) {
				fmt.Fprintln(cmd.OutOrStdout(), styleOK.Render("equivalent"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleErr.Render("not equivalent"))
			return lib.Silent(1)
		},
	}
}

// equivOperand resolves NAME.PIN through lookup, or parses arg as an expression.
func equivOperand(arg string, depth int, lookup func(string) (*prim.Primitive, error)) (prim.Expr, error) {
	if name, pin, ok := strings.Cut(arg, "."); ok && prim.IsIdent(pin) {
		p, err := lookup(name)
		if err != nil {
			return nil, err
		}
		e, ok := p.Function(pin)
		if !ok {
			return nil, fmt.Errorf("%s has no output %s (outputs: %s)", name, pin, strings.Join(p.Outputs(), ", "))
		}
		return e, nil
	}
	e, err := prim.ParseExprLimit(arg, depth)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", arg, err)
	}
	return e, nil
}
