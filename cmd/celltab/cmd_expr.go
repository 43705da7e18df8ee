package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"celltab/cmd/celltab/prim"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func newExprCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expr [EXPR ...]",
		Short: "Parse boolean expressions and show their structure",
		Long: "Parse each EXPR (or PIN=EXPR) and print its canonical form, tree and pins.\n" +
			"Without arguments an interactive prompt is started.",
		RunE: func(cmd *cobra.Command, args []string) error {
			depth := a.cfg.Limits.MaxDepth
			if len(args) > 0 {
				var failed bool
				for _, arg := range args {
					if !explain(cmd.OutOrStdout(), arg, depth) {
						failed = true
					}
				}
				if failed {
					return errors.New("invalid expression")
				}
				return nil
			}
			return exprREPL(cmd.OutOrStdout(), depth)
		},
	}
}

func exprREPL(w io.Writer, depth int) error {
	conf := &readline.Config{
		Prompt:            "expr> ",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdout:            w,
	}
	if dir, err := resolveConfigDir(); err == nil {
		conf.HistoryFile = filepath.Join(dir, "expr_history")
	}
	rl, err := readline.NewEx(conf)
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit", ":q":
			return nil
		}
		explain(rl.Stdout(), line, depth)
	}
}

// explain parses text (optionally PIN=EXPR) and describes the result. It
// reports whether the text parsed.
func explain(w io.Writer, text string, depth int) bool {
	exprText, target := text, ""
	if strings.Contains(text, "=") {
		t, rhs, err := prim.SplitAssign(text)
		if err != nil {
			fmt.Fprintln(w, styleErr.Render(err.Error()))
			return false
		}
		exprText, target = rhs, t
	}

	e, err := prim.ParseExprLimit(exprText, depth)
	if err != nil {
		printSyntaxError(w, exprText, err)
		return false
	}

	canonical := prim.Render(e)
	if target != "" {
		canonical = target + "=" + canonical
	}
	fmt.Fprintln(w, styleLabel.Render("canonical")+canonical)
	fmt.Fprintln(w, styleLabel.Render("pins")+strings.Join(prim.Idents(e), " "))
	if v, ok := prim.Constant(e); ok {
		fmt.Fprintln(w, styleLabel.Render("constant")+styleWarn.Render(boolDigit(v)))
	}
	fmt.Fprintln(w, styleLabel.Render("tree"))
	writeTree(w, e, "  ")
	return true
}

func printSyntaxError(w io.Writer, text string, err error) {
	var se *prim.SyntaxError
	if !errors.As(err, &se) {
		fmt.Fprintln(w, styleErr.Render(err.Error()))
		return
	}
	fmt.Fprintln(w, "  "+text)
	fmt.Fprintln(w, "  "+strings.Repeat(" ", se.Pos)+styleErr.Render("^ "+se.Err.Error()))
}

// writeTree prints e as an indented tree, one node per line.
func writeTree(w io.Writer, e prim.Expr, indent string) {
	switch x := e.(type) {
	case prim.Literal:
		fmt.Fprintf(w, "%s%s\n", indent, x)
	case prim.Not:
		fmt.Fprintf(w, "%sNOT\n", indent)
		writeTree(w, x.X, indent+"  ")
	case prim.And:
		fmt.Fprintf(w, "%sAND\n", indent)
		for _, c := range x.Xs {
			writeTree(w, c, indent+"  ")
		}
	case prim.Or:
		fmt.Fprintf(w, "%sOR\n", indent)
		for _, c := range x.Xs {
			writeTree(w, c, indent+"  ")
		}
	}
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
