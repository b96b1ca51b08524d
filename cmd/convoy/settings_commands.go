package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"convoy/internal/api"
	"convoy/internal/ipc"
	"convoy/internal/textutil"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and update output naming settings",
	}

	settingsCmd.AddCommand(newSettingsShowCommand(ctx))
	settingsCmd.AddCommand(newSettingsSetCommand(ctx))

	return settingsCmd
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current naming settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SettingsGet()
				if err != nil {
					return err
				}
				printSettings(cmd, resp.Settings)
				return nil
			})
		},
	}
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update one naming setting",
		Long: `Update one naming setting. Keys:
  output_directory   directory converted files are written to
  use_subdirectory   write into a subdirectory of the input's directory (true/false)
  subdirectory_name  name of that subdirectory
  filename_pattern   output filename template, e.g. "{name}_{number}"
  zoomed_thumbnails  crop thumbnails instead of fitting them (true/false)`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SettingsSet(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
				printSettings(cmd, resp.Settings)
				return nil
			})
		},
	}
}

func printSettings(cmd *cobra.Command, settings api.SettingsView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Output directory:  %s\n", textutil.Ternary(settings.OutputDirectory != "", settings.OutputDirectory, "(input directory)"))
	fmt.Fprintf(out, "Use subdirectory:  %s\n", textutil.Ternary(settings.UseSubdirectory, "yes", "no"))
	fmt.Fprintf(out, "Subdirectory name: %s\n", settings.SubdirectoryName)
	fmt.Fprintf(out, "Filename pattern:  %s\n", settings.FilenamePattern)
	fmt.Fprintf(out, "Zoomed thumbnails: %s\n", textutil.Ternary(settings.ZoomedThumbnails, "yes", "no"))
}
