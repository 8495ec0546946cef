package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/unowned-ai/nin/pkg/notepad"
)

func writeSnapshot(w io.Writer, snap notepad.Snapshot, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q (must be json or yaml)", format)
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Dump every folder, note and top-level note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				snap, err := a.svc.Export(ctx)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					return writeSnapshot(cmd.OutOrStdout(), snap, format)
				}

				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				if err := writeSnapshot(f, snap, format); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				printOK(cmd.ErrOrStderr(), "Exported %d folders and %d top-level notes to %s.", len(snap.Folders), len(snap.TopLevelNotes), output)
				return nil
			})
		},
	}
	exportCmd.Flags().String("format", "json", "Output format: json or yaml")
	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	return exportCmd
}
