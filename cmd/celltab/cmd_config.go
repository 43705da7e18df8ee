package main

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

//go:embed config.example.yaml
var exampleConfigYAML []byte

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the " + appName + " config file",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigShowCommand(a))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		force bool
		dir   string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented starter config file",
		Long: "Write a commented " + configFileName + " holding the default settings.\n\n" +
			"The default config directory is resolved as:\n" +
			"  $" + envConfigDir + " > $XDG_CONFIG_HOME/" + appName + " > ~/.config/" + appName,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				var err error
				if dir, err = resolveConfigDir(); err != nil {
					return err
				}
			}
			path := filepath.Join(dir, configFileName)

			if !force {
				if _, err := os.Stat(path); err == nil {
					ok, err := confirmOverwrite(path)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintf(cmd.ErrOrStderr(), "kept %s\n", path)
						return nil
					}
				}
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", dir, err)
			}
			if err := os.WriteFile(path, exampleConfigYAML, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "initialised %s\n", path)
			return nil
		},
	}
	// Skip config loading so a broken file can be replaced.
	cmd.PersistentPreRunE = func(*cobra.Command, []string) error { return nil }
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file without asking")
	cmd.Flags().StringVar(&dir, "dir", "", "target config directory (default: auto-resolved)")
	return cmd
}

// confirmOverwrite asks before replacing path. Without a terminal there is
// nobody to ask, so it fails and points at --force.
func confirmOverwrite(path string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	var ok bool
	err := huh.NewConfirm().
		Title(path + " already exists").
		Description("Replace it with the default configuration?").
		Affirmative("Overwrite").
		Negative("Keep").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func newConfigShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := a.cfgFile
			if _, err := os.Stat(src); err != nil {
				src += " (not found, defaults)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", src)
			return writeYAML(cmd.OutOrStdout(), a.cfg)
		},
	}
}
