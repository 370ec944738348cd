package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// SourceName identifies where a record came from.
type SourceName string

const (
	SourceYelp        SourceName = "yelp"
	SourceYellowPages SourceName = "yellowpages"
	SourceHouzz       SourceName = "houzz"
	SourceGoogleMaps  SourceName = "googlemaps"
	SourceCustom      SourceName = "custom"
	// SourceSynthetic marks records fabricated by the fallback synthesizer.
	// Consumers must never treat these as real leads.
	SourceSynthetic SourceName = "synthetic"
)

// ParseSource converts a string into a SourceName.
func ParseSource(s string) (SourceName, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yelp":
		return SourceYelp, nil
	case "yellowpages", "yellow_pages", "yp":
		return SourceYellowPages, nil
	case "houzz":
		return SourceHouzz, nil
	case "googlemaps", "google_maps", "maps":
		return SourceGoogleMaps, nil
	case "custom":
		return SourceCustom, nil
	default:
		return "", eris.Errorf("model: unknown source %q (valid: yelp, yellowpages, houzz, googlemaps, custom)", s)
	}
}

// EmailStatus is the outcome of email verification for a record.
type EmailStatus string

const (
	EmailStatusUnknown           EmailStatus = "unknown"
	EmailStatusInvalidFormat     EmailStatus = "invalid_format"
	EmailStatusInvalidDomain     EmailStatus = "invalid_domain"
	EmailStatusNoMXRecord        EmailStatus = "no_mx_record"
	EmailStatusSMTPFailed        EmailStatus = "smtp_failed"
	EmailStatusVerified          EmailStatus = "verified"
	EmailStatusNoEmail           EmailStatus = "no_email"
	EmailStatusVerificationError EmailStatus = "verification_error"
)

// EmailConfidence is the coarse trust tier for a verification outcome.
type EmailConfidence string

const (
	ConfidenceNA     EmailConfidence = "n/a"
	ConfidenceLow    EmailConfidence = "low"
	ConfidenceMedium EmailConfidence = "medium"
	ConfidenceHigh   EmailConfidence = "high"
)

// MaxDescriptionLen caps the description field.
const MaxDescriptionLen = 500

// BusinessRecord is one discovered or synthesized lead. Created by the record
// builder or the synthesizer, mutated in place by email discovery and
// verification, and treated as immutable by everything downstream.
type BusinessRecord struct {
	Name         string     `json:"name"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	Address      string     `json:"address,omitempty"`
	Website      string     `json:"website,omitempty"`
	Category     string     `json:"category,omitempty"`
	Rating       float64    `json:"rating,omitempty"`
	ReviewCount  int        `json:"review_count,omitempty"`
	PriceTier    string     `json:"price_tier,omitempty"`
	Neighborhood string     `json:"neighborhood,omitempty"`
	Hours        string     `json:"hours,omitempty"`
	Description  string     `json:"description,omitempty"`
	SourceURL    string     `json:"source_url,omitempty"`
	SourceName   SourceName `json:"source_name"`

	SearchQuery    string    `json:"search_query"`
	SearchLocation string    `json:"search_location"`
	ScrapedAt      time.Time `json:"scraped_at"`

	EmailVerified   bool            `json:"email_verified"`
	EmailStatus     EmailStatus     `json:"email_status"`
	EmailConfidence EmailConfidence `json:"email_confidence"`
}

// validPriceTiers holds the accepted price tier values.
var validPriceTiers = map[string]bool{
	"": true, "$": true, "$$": true, "$$$": true, "$$$$": true,
}

// Validate checks the record's structural invariants.
func (r *BusinessRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return eris.New("model: record has empty name")
	}
	if r.Rating < 0 || r.Rating > 5 {
		return eris.Errorf("model: rating %.2f out of range [0,5]", r.Rating)
	}
	if r.ReviewCount < 0 {
		return eris.Errorf("model: negative review count %d", r.ReviewCount)
	}
	if !validPriceTiers[r.PriceTier] {
		return eris.Errorf("model: invalid price tier %q", r.PriceTier)
	}
	if len(r.Description) > MaxDescriptionLen {
		return eris.Errorf("model: description exceeds %d chars", MaxDescriptionLen)
	}
	if r.EmailVerified && r.EmailStatus != EmailStatusVerified {
		return eris.Errorf("model: email_verified set but status is %q", r.EmailStatus)
	}
	if r.Email == "" && r.EmailStatus != "" && r.EmailStatus != EmailStatusNoEmail && r.EmailStatus != EmailStatusUnknown {
		return eris.Errorf("model: no email but status is %q", r.EmailStatus)
	}
	return nil
}

// Synthetic reports whether this record was fabricated rather than scraped.
func (r *BusinessRecord) Synthetic() bool {
	return r.SourceName == SourceSynthetic
}
