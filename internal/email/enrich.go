package email

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// Enricher runs discovery and verification over a batch of records.
// Discovery fans out across sites; verification is serialized and
// rate-limited so one run can't hammer DNS or mail servers.
type Enricher struct {
	disc        *Discoverer
	ver         *Verifier
	concurrency int
	limiter     *rate.Limiter
	log         *zap.Logger
}

// NewEnricher wires an Enricher from configuration.
func NewEnricher(cfg config.EmailConfig) *Enricher {
	concurrency := cfg.DiscoveryConcurrency
	if concurrency <= 0 {
		concurrency = 3
	}
	perSec := cfg.VerifyRatePerSec
	if perSec <= 0 {
		perSec = 2
	}
	return &Enricher{
		disc: NewDiscoverer(time.Duration(cfg.DiscoveryTimeoutSecs) * time.Second),
		ver: NewVerifier(VerifierOptions{
			SMTPProbe:   cfg.SMTPProbe,
			SMTPTimeout: time.Duration(cfg.SMTPTimeoutSecs) * time.Second,
		}),
		concurrency: concurrency,
		limiter:     rate.NewLimiter(rate.Limit(perSec), 1),
		log:         zap.L().Named("email.enrich"),
	}
}

// DiscoverAll discovers an email for every record that has a website but no
// address yet, writing results in place.
func (e *Enricher) DiscoverAll(ctx context.Context, records []model.BusinessRecord) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range records {
		if records[i].Email != "" || records[i].Website == "" {
			continue
		}
		g.Go(func() error {
			email, err := e.disc.Discover(gctx, records[i].Website)
			if err != nil {
				return err
			}
			if email != "" {
				records[i].Email = email
				records[i].EmailStatus = model.EmailStatusUnknown
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "email: discovery")
	}
	e.log.Info("discovery complete",
		zap.Int("records", len(records)),
		zap.Int("with_email", countWithEmail(records)))
	return nil
}

// VerifyAll verifies every record's email in place, honoring the rate limit.
// Records without an address get the no_email status.
func (e *Enricher) VerifyAll(ctx context.Context, records []model.BusinessRecord) error {
	for i := range records {
		if records[i].Email == "" {
			records[i].EmailStatus = model.EmailStatusNoEmail
			records[i].EmailConfidence = model.ConfidenceNA
			continue
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "email: verification canceled")
		}
		res := e.ver.Verify(ctx, records[i].Email)
		records[i].EmailVerified = res.IsValid
		records[i].EmailStatus = res.Status
		records[i].EmailConfidence = res.Confidence
	}
	e.log.Info("verification complete", zap.Int("records", len(records)))
	return nil
}

func countWithEmail(records []model.BusinessRecord) int {
	n := 0
	for _, r := range records {
		if r.Email != "" {
			n++
		}
	}
	return n
}
