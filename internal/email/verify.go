package email

import (
	"bufio"
	"context"
	"net"
	"strings"
	"time"

	emailaddress "github.com/mcnijman/go-emailaddress"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Verification is the outcome of checking one address.
type Verification struct {
	Email      string
	IsValid    bool
	Status     model.EmailStatus
	Confidence model.EmailConfidence
}

// placeholderDomains never receive real mail; addresses on them fail the
// domain sanity check before any DNS work.
var placeholderDomains = map[string]bool{
	"example.com": true,
	"example.org": true,
	"example.net": true,
	"test.com":    true,
	"localhost":   true,
	"invalid":     true,
}

// VerifierOptions tunes the verification pipeline.
type VerifierOptions struct {
	// SMTPProbe enables the handshake against the first MX host. Off by
	// default: many networks block outbound port 25, and the probe is the
	// slowest and most intrusive step.
	SMTPProbe   bool
	SMTPTimeout time.Duration
}

// Verifier checks addresses in escalating depth: syntax, domain sanity, MX
// presence, and optionally an SMTP greeting.
type Verifier struct {
	opts VerifierOptions

	// lookupMX and dial are swappable so tests don't need live DNS or an
	// open port 25.
	lookupMX func(ctx context.Context, domain string) ([]*net.MX, error)
	dial     func(ctx context.Context, address string, timeout time.Duration) (net.Conn, error)

	log *zap.Logger
}

func NewVerifier(opts VerifierOptions) *Verifier {
	if opts.SMTPTimeout <= 0 {
		opts.SMTPTimeout = 10 * time.Second
	}
	return &Verifier{
		opts:     opts,
		lookupMX: net.DefaultResolver.LookupMX,
		dial: func(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
			d := net.Dialer{Timeout: timeout}
			return d.DialContext(ctx, "tcp", address)
		},
		log: zap.L().Named("email.verify"),
	}
}

// Verify runs the pipeline for one address. It always returns a usable
// Verification: panics and unexpected failures map to the
// verification_error status instead of propagating.
func (v *Verifier) Verify(ctx context.Context, email string) (result Verification) {
	result = Verification{Email: email}
	defer func() {
		if r := recover(); r != nil {
			v.log.Error("verification panicked", zap.String("email", email), zap.Any("panic", r))
			result.IsValid = false
			result.Status = model.EmailStatusVerificationError
			result.Confidence = model.ConfidenceNA
		}
	}()

	parsed, err := emailaddress.Parse(strings.TrimSpace(email))
	if err != nil {
		result.Status = model.EmailStatusInvalidFormat
		result.Confidence = model.ConfidenceNA
		return result
	}
	domain := strings.ToLower(parsed.Domain)

	if placeholderDomains[domain] || !strings.Contains(domain, ".") {
		result.Status = model.EmailStatusInvalidDomain
		result.Confidence = model.ConfidenceNA
		return result
	}

	mxs, err := v.lookupMX(ctx, domain)
	if err != nil || len(mxs) == 0 {
		result.Status = model.EmailStatusNoMXRecord
		result.Confidence = model.ConfidenceLow
		return result
	}

	if !v.opts.SMTPProbe {
		result.IsValid = true
		result.Status = model.EmailStatusVerified
		result.Confidence = model.ConfidenceMedium
		return result
	}

	// The domain has MX records, so a failed handshake still leaves the
	// address plausibly deliverable.
	if err := v.probe(ctx, strings.TrimSuffix(mxs[0].Host, ".")); err != nil {
		v.log.Debug("smtp probe failed", zap.String("domain", domain), zap.Error(err))
		result.Status = model.EmailStatusSMTPFailed
		result.Confidence = model.ConfidenceMedium
		return result
	}

	result.IsValid = true
	result.Status = model.EmailStatusVerified
	result.Confidence = model.ConfidenceHigh
	return result
}

// probe dials the MX host on port 25 and waits for the server greeting. A
// 2xx banner is enough to call the server alive; no mail transaction is
// attempted.
func (v *Verifier) probe(ctx context.Context, host string) error {
	conn, err := v.dial(ctx, net.JoinHostPort(host, "25"), v.opts.SMTPTimeout)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(v.opts.SMTPTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return err
	}
	if !strings.HasPrefix(line, "220") {
		return &net.AddrError{Err: "unexpected SMTP greeting: " + strings.TrimSpace(line), Addr: host}
	}
	return nil
}
