// Command convoyd runs the convoy conversion daemon: queue store, preset
// catalog, converter workers, coordinator, and the IPC socket the CLI talks
// to. It blocks until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"convoy/internal/config"
	"convoy/internal/daemonrun"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string

	cmd := &cobra.Command{
		Use:           "convoyd",
		Short:         "Convoy conversion daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, _, err := config.Load(configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel: logLevelFlag,
			})
		},
	}

	cmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Override configured log level (debug, info, warn, error)")
	return cmd
}
