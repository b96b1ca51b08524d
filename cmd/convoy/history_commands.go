package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"convoy/internal/queueaccess"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect completed conversions",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversion history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				entries, err := access.History(cmd.Context())
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "History is empty")
					return nil
				}
				table := renderTable(
					[]string{"Input", "Output", "Preset", "Size", "Completed"},
					buildHistoryRows(entries),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				removed, err := access.ClearHistory(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d history entries\n", removed)
				return nil
			})
		},
	}
}
