package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/email"
)

var verifyCmd = &cobra.Command{
	Use:   "verify --batch <batch-id>",
	Short: "Re-run email verification for a stored batch",
	Long:  "Loads a stored batch, verifies every record's email against DNS (and optionally SMTP, per config), and writes the outcomes back to the store.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		batchID, _ := cmd.Flags().GetString("batch")

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		batch, err := st.GetBatch(ctx, batchID)
		if err != nil {
			return eris.Wrap(err, "verify")
		}

		enricher := email.NewEnricher(cfg.Email)
		if err := enricher.VerifyAll(ctx, batch.Records); err != nil {
			return eris.Wrap(err, "verify")
		}

		verified := 0
		for _, rec := range batch.Records {
			if err := st.UpdateRecordEmail(ctx, batch.ID, rec); err != nil {
				return eris.Wrap(err, "verify: save outcome")
			}
			if rec.EmailVerified {
				verified++
			}
		}

		zap.L().Info("verification complete",
			zap.String("batch_id", batch.ID),
			zap.Int("records", len(batch.Records)),
			zap.Int("verified", verified))
		fmt.Printf("Verified %d of %d records in batch %s\n", verified, len(batch.Records), batch.ID)
		return nil
	},
}

func init() {
	verifyCmd.Flags().String("batch", "", "batch ID to verify (required)")
	_ = verifyCmd.MarkFlagRequired("batch")

	rootCmd.AddCommand(verifyCmd)
}
