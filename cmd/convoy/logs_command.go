package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"convoy/internal/ipc"
	"convoy/internal/logs"
)

const logFollowWait = time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if client, err := ctx.dialClient(); err == nil {
				defer client.Close()
				return tailOverRPC(cmd, client, follow, lines)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logPath := filepath.Join(cfg.Paths.LogDir, "convoyd.log")
			return tailLocalFile(cmd, logPath, follow, lines)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep streaming new log lines")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	return cmd
}

func tailOverRPC(cmd *cobra.Command, client *ipc.Client, follow bool, lines int) error {
	out := cmd.OutOrStdout()

	resp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: lines})
	if err != nil {
		return err
	}
	for _, line := range resp.Lines {
		fmt.Fprintln(out, line)
	}
	if !follow {
		return nil
	}

	offset := resp.Offset
	for {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		resp, err := client.LogTail(ipc.LogTailRequest{
			Offset:     offset,
			Follow:     true,
			WaitMillis: int(logFollowWait / time.Millisecond),
		})
		if err != nil {
			return err
		}
		for _, line := range resp.Lines {
			fmt.Fprintln(out, line)
		}
		offset = resp.Offset
	}
}

func tailLocalFile(cmd *cobra.Command, logPath string, follow bool, lines int) error {
	out := cmd.OutOrStdout()

	result, err := logs.Tail(cmd.Context(), logPath, logs.TailOptions{Offset: -1, Limit: lines})
	if err != nil {
		return err
	}
	for _, line := range result.Lines {
		fmt.Fprintln(out, line)
	}
	if !follow {
		return nil
	}

	offset := result.Offset
	for {
		result, err := logs.Tail(cmd.Context(), logPath, logs.TailOptions{
			Offset: offset,
			Follow: true,
			Wait:   logFollowWait,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		for _, line := range result.Lines {
			fmt.Fprintln(out, line)
		}
		offset = result.Offset
	}
}
