package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List stored extraction batches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		source, _ := cmd.Flags().GetString("source")
		query, _ := cmd.Flags().GetString("query")
		limit, _ := cmd.Flags().GetInt("limit")

		infos, err := st.ListBatches(ctx, store.BatchFilter{
			Source: model.SourceName(source),
			Query:  query,
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "batches")
		}

		if len(infos) == 0 {
			fmt.Fprintln(os.Stderr, "No batches found.")
			return nil
		}

		formatBatchList(os.Stdout, infos)
		return nil
	},
}

var batchesShowCmd = &cobra.Command{
	Use:   "show <batch-id>",
	Short: "Show a stored batch with its records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		batch, err := st.GetBatch(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "batches show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	},
}

func formatBatchList(w io.Writer, infos []store.BatchInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tQUERY\tLOCATION\tSOURCE\tRECORDS\tSYNTHETIC\tSCRAPED")
	for _, bi := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%v\t%s\n",
			bi.ID, bi.SearchQuery, bi.SearchLocation, bi.Source,
			bi.RecordCount, bi.Synthetic, bi.ScrapedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush() //nolint:errcheck
}

func formatBatch(w io.Writer, batch *model.ExtractionBatch) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPHONE\tEMAIL\tADDRESS\tRATING\tSOURCE")
	for _, rec := range batch.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\t%s\n",
			rec.Name, rec.Phone, rec.Email, rec.Address, rec.Rating, rec.SourceName)
	}
	tw.Flush() //nolint:errcheck
	fmt.Fprintf(w, "\n%d records (batch %s)\n", len(batch.Records), batch.ID)
}

func init() {
	batchesCmd.Flags().String("source", "", "filter by source")
	batchesCmd.Flags().String("query", "", "filter by search query")
	batchesCmd.Flags().Int("limit", 50, "maximum batches to list")
	batchesCmd.AddCommand(batchesShowCmd)

	rootCmd.AddCommand(batchesCmd)
}
