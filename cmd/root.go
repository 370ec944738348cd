package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/browser"
	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "leadgen",
	Short: "Business lead extraction pipeline",
	Long:  "Scrapes business directories for leads, discovers and verifies contact emails, and synthesizes placeholder results when sources block extraction.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens and migrates the configured store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// resolveOutPath places bare file names under the configured export
// directory, creating it if needed. Paths that already carry a directory
// component are used as given.
func resolveOutPath(out string) (string, error) {
	if filepath.Dir(out) != "." || cfg.Export.Dir == "" {
		return out, nil
	}
	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		return "", eris.Wrap(err, "create export directory")
	}
	return filepath.Join(cfg.Export.Dir, out), nil
}

// newPage picks the page backend: plain HTTP when an explicit URL is given
// for a static site, headless Chrome otherwise.
func newPage(static bool) (browser.Page, error) {
	if static {
		return browser.NewStaticPage(time.Duration(cfg.Browser.NavTimeoutSecs)*time.Second, cfg.Scrape.NavRetries), nil
	}
	opts := browser.ChromeOptions{
		Headless:    cfg.Browser.Headless,
		NavTimeout:  time.Duration(cfg.Browser.NavTimeoutSecs) * time.Second,
		SettleDelay: time.Duration(cfg.Browser.SettleDelayMS) * time.Millisecond,
	}
	if cfg.Browser.DebugScreenshot {
		opts.ScreenshotPath = "debug"
	}
	return browser.NewChromeSession(opts)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
