package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/lwcgen/cmd/lwcgen/internal/config"
	"github.com/recera/lwcgen/cmd/lwcgen/internal/ui"
)

func newInitCommand() *cobra.Command {
	var (
		path          string
		force         bool
		noInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an lwcgen.yaml configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}

			cfg := config.DefaultConfig()
			if !noInteractive {
				if !isatty() {
					return errors.New("not running in a terminal, use --no-interactive")
				}
				var err error
				if cfg, err = ui.RunWizard(cfg); err != nil {
					return err
				}
			}

			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to write configuration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Info("wrote "+path))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", config.FileNames[0], "Configuration file to write")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "Write the defaults without prompting")
	return cmd
}

// isatty checks if we're running in a terminal
func isatty() bool {
	info, err := os.Stdout.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
