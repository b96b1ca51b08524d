package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"convoy/internal/fileutil"
	"convoy/internal/ipc"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var presetName string

	cmd := &cobra.Command{
		Use:   "add <file> [file...]",
		Short: "Queue one or more video files for conversion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([]string, 0, len(args))
			for _, arg := range args {
				expanded, err := fileutil.ExpandPath(arg)
				if err != nil {
					return err
				}
				inputs = append(inputs, expanded)
			}

			return ctx.withClient(func(client *ipc.Client) error {
				out := cmd.OutOrStdout()

				if len(inputs) == 1 {
					resp, err := client.AddFile(inputs[0], presetName)
					if err != nil {
						return err
					}
					if resp.Duplicate {
						fmt.Fprintf(out, "Skipped %s: already queued\n", filepath.Base(inputs[0]))
						return nil
					}
					fmt.Fprintf(out, "Queued %s as job %s\n", filepath.Base(inputs[0]), shortID(resp.JobID))
					return nil
				}

				resp, err := client.AddBatch(inputs, presetName)
				if err != nil {
					return err
				}
				skipped := len(inputs) - len(resp.JobIDs)
				fmt.Fprintf(out, "Queued %d files\n", len(resp.JobIDs))
				if skipped > 0 {
					fmt.Fprintf(out, "Skipped %d already-queued files\n", skipped)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&presetName, "preset", "p", "", "Conversion preset name (default preset when omitted)")
	return cmd
}
