package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"convoy/internal/deps"
	"convoy/internal/preflight"
	"convoy/internal/queueaccess"
	"convoy/internal/textutil"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency, and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			running := false
			pid := 0
			converting := false
			if client, dialErr := ctx.dialClient(); dialErr == nil {
				if resp, statusErr := client.Status(); statusErr == nil {
					running = resp.Running
					pid = resp.PID
					converting = resp.Converting
				}
				client.Close()
			}

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if running {
				detail := fmt.Sprintf("Running (pid %d)", pid)
				if converting {
					detail += ", converting"
				}
				fmt.Fprintln(stdout, renderStatusLine("Daemon", statusOK, detail, colorize))
			} else {
				fmt.Fprintln(stdout, renderStatusLine("Daemon", statusWarn, "Not running", colorize))
			}
			fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, ctx.socketPath(), colorize))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			probe := preflight.ProbeEncoders(cmd.Context(), cfg)
			fmt.Fprintln(stdout, dependencyLine(probe.FFmpeg, colorize))
			fmt.Fprintln(stdout, dependencyLine(probe.FFprobe, colorize))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Paths", colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout, directoryStatusLine("Data directory", cfg.Paths.DataDir, colorize))
			fmt.Fprintln(stdout, directoryStatusLine("Log directory", cfg.Paths.LogDir, colorize))
			if cfg.Naming.OutputDirectory != "" {
				fmt.Fprintln(stdout, directoryStatusLine("Output directory", cfg.Naming.OutputDirectory, colorize))
			}
			ntfy := preflight.CheckNtfyFromConfig(cfg)
			fmt.Fprintln(stdout, renderStatusLine(ntfy.Name, textutil.Ternary(ntfy.Passed, statusOK, statusWarn), ntfy.Detail, colorize))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Queue Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				stats, err := access.Stats(cmd.Context())
				if err != nil {
					return err
				}
				rows := buildQueueStatusRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(stdout, "Queue is empty")
					return nil
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}
}

func dependencyLine(status deps.Status, colorize bool) string {
	if status.Available {
		message := "Ready"
		if status.Detail != "" {
			message = status.Detail
		} else if status.Command != "" {
			message = fmt.Sprintf("Ready (command: %s)", status.Command)
		}
		return renderStatusLine(status.Name, statusOK, message, colorize)
	}
	detail := status.Detail
	if detail == "" {
		detail = "not available"
	}
	kind := statusError
	if status.Optional {
		kind = statusWarn
	}
	return renderStatusLine(status.Name, kind, detail, colorize)
}

func directoryStatusLine(label, path string, colorize bool) string {
	result := preflight.CheckDirectoryAccess(label, path)
	if result.Passed {
		return renderStatusLine(label, statusOK, result.Detail, colorize)
	}
	return renderStatusLine(label, statusError, result.Detail, colorize)
}
