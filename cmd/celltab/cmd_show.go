package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"celltab/cmd/celltab/prim"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

func newShowCommand(a *app) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "show [NAME]",
		Short: "Show one primitive (pick interactively when NAME is omitted)",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return a.completeNames(cmd, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					return errors.New("NAME is required when stdin is not a terminal")
				}
				name, err = pickPrimitive(reg)
				if err != nil {
					return err
				}
			}

			p, err := reg.Lookup(name)
			if err != nil {
				return err
			}
			if asYAML {
				return writeYAML(cmd.OutOrStdout(), toDoc(p))
			}
			fmt.Fprintln(cmd.OutOrStdout(), describe(p))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the model as YAML")
	return cmd
}

// pickPrimitive lets the user select a primitive with a fuzzy finder, with
// the selected model in the preview pane.
func pickPrimitive(reg *prim.Registry) (string, error) {
	prims := reg.All()
	idx, err := fuzzyfinder.Find(
		prims,
		func(i int) string {
			return prims[i].Name()
		},
		fuzzyfinder.WithPromptString("Select primitive: "),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i < 0 {
				return ""
			}
			return describe(prims[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", errors.New("no primitive selected")
		}
		return "", err
	}
	return prims[idx].Name(), nil
}

func (a *app) completeNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	// Completion bypasses PersistentPreRunE.
	if a.cfg == nil {
		if err := a.setup(cmd); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
	}
	reg, err := a.registry(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, n := range reg.Names() {
		if strings.HasPrefix(n, toComplete) {
			out = append(out, n)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// describe renders a primitive for humans.
func describe(p *prim.Primitive) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(p.Name()))
	b.WriteString("\n")
	row := func(label, value string) {
		b.WriteString(styleLabel.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("kind", p.Kind().String())
	row("line", fmt.Sprint(p.Line()))
	row("outputs", strings.Join(p.Outputs(), " "))
	row("inputs", strings.Join(p.Inputs(), " "))
	for _, attr := range p.Attributes() {
		row(string(attr.Key), attr.Text())
	}
	for _, w := range p.Warnings() {
		b.WriteString(styleWarn.Render("warning: " + w.Message))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// primitiveDoc is the YAML shape of a primitive model.
type primitiveDoc struct {
	Name       string    `yaml:"name"`
	Kind       string    `yaml:"kind"`
	Line       int       `yaml:"line"`
	Outputs    []string  `yaml:"outputs"`
	Inputs     []string  `yaml:"inputs,omitempty"`
	Attributes []attrDoc `yaml:"attributes"`
	Warnings   []string  `yaml:"warnings,omitempty"`
}

type attrDoc struct {
	Key       string `yaml:"key"`
	Pin       string `yaml:"pin,omitempty"`
	Expr      string `yaml:"expr"`
	Signal    string `yaml:"signal,omitempty"`
	ActiveLow bool   `yaml:"active_low,omitempty"`
}

func toDoc(p *prim.Primitive) primitiveDoc {
	doc := primitiveDoc{
		Name:    p.Name(),
		Kind:    p.Kind().String(),
		Line:    p.Line(),
		Outputs: p.Outputs(),
		Inputs:  p.Inputs(),
	}
	for _, attr := range p.Attributes() {
		ad := attrDoc{Key: string(attr.Key), Pin: attr.Target, Expr: prim.Render(attr.Expr)}
		if attr.Signal != nil && attr.Key != prim.KeyFunction {
			ad.Signal = attr.Signal.Pin
			ad.ActiveLow = attr.Signal.ActiveLow
		}
		doc.Attributes = append(doc.Attributes, ad)
	}
	for _, w := range p.Warnings() {
		doc.Warnings = append(doc.Warnings, w.Message)
	}
	return doc
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
