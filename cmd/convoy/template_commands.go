package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"convoy/internal/fileutil"
	"convoy/internal/ipc"
	"convoy/internal/naming"
)

func newTemplateCommand(ctx *commandContext) *cobra.Command {
	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Validate and preview output filename templates",
	}

	templateCmd.AddCommand(newTemplateCheckCommand())
	templateCmd.AddCommand(newTemplateSuggestCommand())
	templateCmd.AddCommand(newTemplatePreviewCommand(ctx))

	return templateCmd
}

func newTemplateCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "check <template>",
		Short:       "Check whether a filename template is valid",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			template := args[0]
			out := cmd.OutOrStdout()
			if naming.Validate(template) {
				fmt.Fprintf(out, "%s: valid\n", template)
				return nil
			}
			fmt.Fprintf(out, "%s: invalid (recognized placeholders: {%s}, {%s})\n",
				template, naming.PlaceholderName, naming.PlaceholderNumber)
			fmt.Fprintf(out, "The default template %q would be used instead.\n", naming.DefaultTemplate)
			return nil
		},
	}
}

func newTemplateSuggestCommand() *cobra.Command {
	var text string
	var cursor int

	cmd := &cobra.Command{
		Use:         "suggest",
		Short:       "Compute the placeholder completion at a cursor position",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			suggestion, ok := naming.SuggestAt(text, cursor)
			if !ok {
				fmt.Fprintln(out, "No suggestion")
				return nil
			}
			fmt.Fprintf(out, "Placeholder: {%s}\n", suggestion.Placeholder)
			fmt.Fprintf(out, "Completion:  %s\n", suggestion.Completion)
			fmt.Fprintf(out, "Result:      %s%s%s\n", text[:cursor], suggestion.Completion, text[cursor:])
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Template text being edited")
	cmd.Flags().IntVar(&cursor, "cursor", 0, "Cursor byte offset into the text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newTemplatePreviewCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var index int
	var batchSize int

	cmd := &cobra.Command{
		Use:   "preview <template>",
		Short: "Preview the output path a template produces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			template := args[0]
			input, err := fileutil.ExpandPath(inputPath)
			if err != nil {
				return err
			}

			path, valid, err := renderTemplate(ctx, template, input, index, batchSize)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !valid {
				fmt.Fprintf(out, "Template is invalid; previewing the default template %q\n", naming.DefaultTemplate)
			}
			fmt.Fprintln(out, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Sample input file path")
	cmd.Flags().IntVar(&index, "index", 0, "Batch position for the {number} placeholder")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Batch size used for number padding")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// renderTemplate previews through the daemon when reachable, so the daemon's
// live settings apply. Otherwise it renders locally from config defaults.
func renderTemplate(ctx *commandContext, template, input string, index, batchSize int) (string, bool, error) {
	if client, err := ctx.dialClient(); err == nil {
		defer client.Close()
		resp, rpcErr := client.TemplateRender(ipc.TemplateRenderRequest{
			Template:  template,
			InputPath: input,
			Index:     index,
			BatchSize: batchSize,
		})
		if rpcErr != nil {
			return "", false, rpcErr
		}
		return resp.Path, resp.Valid, nil
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return "", false, err
	}
	req := naming.Request{
		InputPath:        input,
		OutputDirectory:  cfg.Naming.OutputDirectory,
		UseSubdirectory:  cfg.Naming.UseSubdirectory,
		SubdirectoryName: cfg.Naming.SubdirectoryName,
		Template:         template,
		Container:        cfg.Conversion.TargetContainer,
		SourceExtensions: cfg.Conversion.SourceExtensions,
		Claimed:          naming.NewPathSet(),
		Index:            index,
		BatchSize:        batchSize,
	}
	if index > 0 || batchSize > 0 {
		req.ForceNumber = true
	}
	return naming.Resolve(req), naming.Validate(template), nil
}
