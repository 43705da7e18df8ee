package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"celltab/cmd/celltab/prim"
	"celltab/cmd/celltab/primtab"

	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands once flags are parsed.
type app struct {
	configPath string
	flags      Config // flag targets, applied over cfg in setup
	cfg        *Config
	cfgFile    string // resolved config file path
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   appName,
		Short: "Inspect and check standard-cell primitive tables",
		Long: appName + " loads a table of canonical standard-cell primitives, validates it\n" +
			"and exposes the resulting models.\n\n" +
			"Without --table the table compiled into the binary is used.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"config file (default: <config dir>/"+configFileName+")")
	a.flags.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newListCommand(a),
		newShowCommand(a),
		newCheckCommand(a),
		newBrowseCommand(a),
		newExprCommand(a),
		newEquivCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, path, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyFlags(cmd.Flags(), &a.flags)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg, a.cfgFile, a.logger = cfg, path, logger
	slog.SetDefault(logger)
	return nil
}

// tableSource returns the configured table text and a label for messages.
func (a *app) tableSource() ([]byte, string, error) {
	if a.cfg.Table == "" {
		return primtab.Shipped(), "<shipped>", nil
	}
	data, err := os.ReadFile(a.cfg.Table)
	if err != nil {
		return nil, "", fmt.Errorf("table file %s: %w", a.cfg.Table, err)
	}
	return data, a.cfg.Table, nil
}

// registry builds the configured table on a background goroutine and waits
// for it; commands never see a registry before the build has finished.
func (a *app) registry(ctx context.Context) (*prim.Registry, error) {
	data, label, err := a.tableSource()
	if err != nil {
		return nil, err
	}
	pending := prim.Start(ctx, func(context.Context) (*prim.Registry, error) {
		reg, _, err := primtab.Build(data, a.cfg.engineOptions(a.logger)...)
		return reg, err
	})
	reg, err := pending.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	a.logger.Debug("registry ready", slog.String("table", label), slog.Int("primitives", reg.Len()))
	return reg, nil
}
