package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"celltab/cmd/celltab/prim"
	"celltab/cmd/celltab/primtab"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

const watchDebounce = 100 * time.Millisecond

func newCheckCommand(a *app) *cobra.Command {
	var (
		watch       bool
		withMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "check [PATTERN ...]",
		Short: "Load and validate primitive tables",
		Long: "Load and validate primitive tables, reporting every error and warning.\n\n" +
			"Patterns may use ** to match across directories. Without patterns the\n" +
			"configured table is checked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &checker{out: cmd.OutOrStdout(), opts: a.cfg.engineOptions(a.logger), logger: a.logger}
			var promReg *prometheus.Registry
			if withMetrics {
				promReg = prometheus.NewRegistry()
				c.opts = append(c.opts, prim.WithMetrics(prim.NewMetrics(promReg)))
			}

			if len(args) == 0 {
				data, label, err := a.tableSource()
				if err != nil {
					return err
				}
				ok := c.check(label, data)
				if promReg != nil {
					if err := writeMetrics(c.out, promReg); err != nil {
						return err
					}
				}
				if !ok {
					return fmt.Errorf("%s failed", label)
				}
				return nil
			}

			files, err := expandPatterns(args)
			if err != nil {
				return err
			}
			failed := c.checkFiles(files)
			if watch {
				err = c.watch(cmd.Context(), files)
			}
			if promReg != nil {
				if err := writeMetrics(c.out, promReg); err != nil {
					return err
				}
			}
			if err != nil {
				return err
			}
			if !watch && failed > 0 {
				return fmt.Errorf("%d of %d tables failed", failed, len(files))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-check files whenever they change")
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "print build metrics in Prometheus text format")
	return cmd
}

// expandPatterns resolves glob patterns to a sorted, de-duplicated file list.
// A pattern without glob syntax names a file that must exist.
func expandPatterns(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, pat := range patterns {
		matches, err := doublestar.FilepathGlob(pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pat, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pat); err != nil {
				return nil, fmt.Errorf("no table matches %q", pat)
			}
			matches = []string{pat}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

type checker struct {
	out    io.Writer
	opts   []prim.Option
	logger *slog.Logger
}

func (c *checker) checkFiles(files []string) (failed int) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintln(c.out, styleErr.Render("✗ "+f), err)
			failed++
			continue
		}
		if !c.check(f, data) {
			failed++
		}
	}
	return failed
}

// check builds one table and prints its outcome. It reports whether the
// table is free of errors.
func (c *checker) check(label string, data []byte) bool {
	reg, report, err := primtab.Build(data, c.opts...)
	if err != nil {
		fmt.Fprintln(c.out, styleErr.Render("✗ "+label))
		var ves prim.ValidationErrors
		if errors.As(err, &ves) {
			for _, ve := range ves {
				fmt.Fprintln(c.out, "  "+styleErr.Render(ve.Error()))
			}
		} else {
			fmt.Fprintln(c.out, "  "+styleErr.Render(err.Error()))
		}
		if report != nil {
			printWarnings(c.out, report.Warnings)
		}
		return false
	}

	fmt.Fprintf(c.out, "%s %d primitives, %d warnings\n",
		styleOK.Render("✓ "+label+":"), reg.Len(), len(report.Warnings))
	printWarnings(c.out, report.Warnings)
	return true
}

func printWarnings(w io.Writer, warnings []prim.Warning) {
	for _, warn := range warnings {
		fmt.Fprintln(w, "  "+styleWarn.Render("warning: "+warn.String()))
	}
}

// watch re-checks files as they change until ctx is done. Directories are
// watched rather than files so editors that replace files on save are seen.
func (c *checker) watch(ctx context.Context, files []string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	tracked := map[string]bool{}
	dirs := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		tracked[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	fmt.Fprintf(c.out, "watching %d tables (ctrl+c to stop)\n", len(tracked))

	pending := map[string]bool{}
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !tracked[ev.Name] || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			c.logger.Debug("table changed", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			pending[ev.Name] = true
			timer.Reset(watchDebounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("watcher error", slog.String("error", err.Error()))

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for f := range pending {
				changed = append(changed, f)
			}
			sort.Strings(changed)
			pending = map[string]bool{}
			c.checkFiles(changed)
		}
	}
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
