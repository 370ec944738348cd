package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export --batch <batch-id> --out <file>",
	Short: "Export a stored batch to a file",
	Long:  "Writes a stored batch to CSV, JSON, or XLSX depending on the output file's extension.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		batchID, _ := cmd.Flags().GetString("batch")
		outPath, _ := cmd.Flags().GetString("out")

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		batch, err := st.GetBatch(ctx, batchID)
		if err != nil {
			return eris.Wrap(err, "export")
		}

		outPath, err = resolveOutPath(outPath)
		if err != nil {
			return err
		}
		if err := export.WriteFile(batch, outPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %d records to %s\n", len(batch.Records), outPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("batch", "", "batch ID to export (required)")
	exportCmd.Flags().String("out", "", "output file: .csv, .json, or .xlsx (required)")
	_ = exportCmd.MarkFlagRequired("batch")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(exportCmd)
}
