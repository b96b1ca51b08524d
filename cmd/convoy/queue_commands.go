package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"convoy/internal/api"
	"convoy/internal/ipc"
	"convoy/internal/queueaccess"
	"convoy/internal/textutil"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the conversion queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueClearCompletedCommand(ctx))
	queueCmd.AddCommand(newQueueClearFailedCommand(ctx))
	queueCmd.AddCommand(newQueueCancelCommand(ctx))
	queueCmd.AddCommand(newQueueResetCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued conversion jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				jobs, err := access.List(cmd.Context(), listStatuses)
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Input", "Status", "Progress", "Preset", "Output", "Created"},
					buildQueueListRows(jobs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by job status (repeatable)")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				job, err := resolveJob(cmd.Context(), access, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:        %s\n", job.ID)
				fmt.Fprintf(out, "Input:     %s\n", job.InputPath)
				fmt.Fprintf(out, "Output:    %s\n", job.OutputPath)
				fmt.Fprintf(out, "Preset:    %s\n", job.PresetName)
				fmt.Fprintf(out, "Status:    %s\n", textutil.StatusLabel(job.Status))
				fmt.Fprintf(out, "Progress:  %s\n", formatProgress(job.Status, job.Progress))
				if job.StatusMessage != "" {
					fmt.Fprintf(out, "Message:   %s\n", job.StatusMessage)
				}
				if job.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:     %s\n", job.ErrorMessage)
				}
				if job.SizeBefore > 0 {
					fmt.Fprintf(out, "Size:      %s\n", textutil.FormatBytes(job.SizeBefore))
				}
				if job.DurationSeconds > 0 {
					fmt.Fprintf(out, "Duration:  %.1fs\n", job.DurationSeconds)
				}
				if job.ThumbnailPath != "" {
					fmt.Fprintf(out, "Thumbnail: %s\n", job.ThumbnailPath)
				}
				fmt.Fprintf(out, "Created:   %s\n", formatDisplayTime(job.CreatedAt))
				fmt.Fprintf(out, "Updated:   %s\n", formatDisplayTime(job.UpdatedAt))
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all queue jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				removed, err := access.ClearAll(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d jobs\n", removed)
				return nil
			})
		},
	}
}

func newQueueClearCompletedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Remove completed jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				removed, err := access.ClearCompleted(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed jobs\n", removed)
				return nil
			})
		},
	}
}

func newQueueClearFailedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-failed",
		Short: "Remove failed jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				removed, err := access.ClearFailed(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d failed jobs\n", removed)
				return nil
			})
		},
	}
}

func newQueueCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a queued or running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				jobID := args[0]
				if resolved, err := resolveJobOverRPC(client, jobID); err == nil {
					jobID = resolved
				}
				resp, err := client.QueueCancel(jobID)
				if err != nil {
					return err
				}
				if resp.Cancelled {
					fmt.Fprintf(cmd.OutOrStdout(), "Cancelled job %s\n", shortID(jobID))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Job %s was not cancelled\n", shortID(jobID))
				}
				return nil
			})
		},
	}
}

func newQueueResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Return stuck processing jobs to the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				updated, err := access.ResetStuck(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d jobs\n", updated)
				return nil
			})
		},
	}
}

// resolveJob finds a job by full ID or unique ID prefix.
func resolveJob(ctx context.Context, access queueaccess.Access, arg string) (*api.JobView, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, fmt.Errorf("job id is required")
	}

	jobs, err := access.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	var matches []api.JobView
	for _, job := range jobs {
		if job.ID == arg {
			match := job
			return &match, nil
		}
		if strings.HasPrefix(job.ID, arg) {
			matches = append(matches, job)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no job matches %q", arg)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("job id %q is ambiguous (%d matches)", arg, len(matches))
	}
}

func resolveJobOverRPC(client *ipc.Client, arg string) (string, error) {
	resp, err := client.QueueList(nil)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, job := range resp.Jobs {
		if job.ID == arg {
			return arg, nil
		}
		if strings.HasPrefix(job.ID, arg) {
			matches = append(matches, job.ID)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	return "", fmt.Errorf("no unique job matches %q", arg)
}
