package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/email"
	"github.com/sells-group/leadgen-cli/internal/engine"
	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/model"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a directory source for business leads",
	Long:  "Runs the extraction pipeline against one source for a query/location pair. Blocked or empty sources produce a clearly flagged synthetic batch instead of failing.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if cfg.Scrape.TimeoutSecs > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Scrape.TimeoutSecs)*time.Second)
			defer cancel()
		}

		query, _ := cmd.Flags().GetString("query")
		location, _ := cmd.Flags().GetString("location")
		sourceName, _ := cmd.Flags().GetString("source")
		searchURL, _ := cmd.Flags().GetString("url")
		maxResults, _ := cmd.Flags().GetInt("max")
		discover, _ := cmd.Flags().GetBool("discover-emails")
		verify, _ := cmd.Flags().GetBool("verify-emails")
		outPath, _ := cmd.Flags().GetString("out")
		save, _ := cmd.Flags().GetBool("save")

		source, err := model.ParseSource(sourceName)
		if err != nil {
			return err
		}
		if maxResults <= 0 {
			maxResults = cfg.Scrape.MaxResults
		}

		page, err := newPage(source == model.SourceCustom)
		if err != nil {
			return err
		}
		defer page.Close() //nolint:errcheck

		eng := engine.New(page, email.NewEnricher(cfg.Email))
		batch, err := eng.Extract(ctx, engine.Request{
			Query:          query,
			Location:       location,
			Source:         source,
			SearchURL:      searchURL,
			MaxResults:     maxResults,
			DiscoverEmails: discover,
			VerifyEmails:   verify,
		})
		if err != nil {
			return eris.Wrap(err, "scrape")
		}

		if batch.Synthetic {
			fmt.Fprintln(os.Stderr, "WARNING: source yielded no real results; batch contains synthetic records")
		}
		zap.L().Info("extraction complete",
			zap.String("batch_id", batch.ID),
			zap.Int("records", len(batch.Records)),
			zap.Bool("synthetic", batch.Synthetic))

		if save {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.SaveBatch(ctx, batch); err != nil {
				return eris.Wrap(err, "scrape: save batch")
			}
			fmt.Printf("Saved batch %s\n", batch.ID)
		}

		if outPath != "" {
			outPath, err = resolveOutPath(outPath)
			if err != nil {
				return err
			}
			if err := export.WriteFile(batch, outPath); err != nil {
				return err
			}
			fmt.Printf("Wrote %d records to %s\n", len(batch.Records), outPath)
			return nil
		}

		formatBatch(os.Stdout, batch)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().String("query", "", "search term, e.g. \"coffee shops\" (required)")
	scrapeCmd.Flags().String("location", "", "search location, e.g. \"Denver, CO\" (required)")
	scrapeCmd.Flags().String("source", "yelp", "listing source: yelp, yellowpages, houzz, googlemaps, custom")
	scrapeCmd.Flags().String("url", "", "explicit results-page URL (required for --source custom)")
	scrapeCmd.Flags().Int("max", 0, "maximum records to extract (default from config)")
	scrapeCmd.Flags().Bool("discover-emails", false, "crawl business websites for contact emails")
	scrapeCmd.Flags().Bool("verify-emails", false, "verify discovered emails against DNS")
	scrapeCmd.Flags().String("out", "", "export file (.csv, .json, or .xlsx)")
	scrapeCmd.Flags().Bool("save", false, "persist the batch to the configured store")
	_ = scrapeCmd.MarkFlagRequired("query")
	_ = scrapeCmd.MarkFlagRequired("location")

	rootCmd.AddCommand(scrapeCmd)
}
