package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"convoy/internal/api"
	"convoy/internal/presets"
)

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List available conversion presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := loadPresetViews(ctx)
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No presets available")
				return nil
			}
			table := renderTable(
				[]string{"Name", "Description", "Video", "Audio", "Quality", "Default"},
				buildPresetRows(views),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

// loadPresetViews prefers the daemon's catalog and falls back to loading the
// catalog locally when the daemon is unreachable.
func loadPresetViews(ctx *commandContext) ([]api.PresetView, error) {
	if client, err := ctx.dialClient(); err == nil {
		defer client.Close()
		resp, rpcErr := client.Presets()
		if rpcErr != nil {
			return nil, rpcErr
		}
		return resp.Presets, nil
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := presets.Load(cfg.Presets.Path)
	if err != nil {
		return nil, err
	}
	defaultPreset, hasDefault := catalog.Default()
	views := make([]api.PresetView, 0, catalog.Len())
	for _, preset := range catalog.List() {
		views = append(views, api.FromPreset(preset, hasDefault && preset.Name == defaultPreset.Name))
	}
	return views, nil
}
