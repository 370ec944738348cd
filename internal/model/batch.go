package model

import "time"

// ExtractionBatch is the result of one extraction request. Synthetic batches
// are explicitly flagged so downstream consumers can't mistake fabricated
// leads for scraped ones.
type ExtractionBatch struct {
	ID             string           `json:"id"`
	SearchQuery    string           `json:"search_query"`
	SearchLocation string           `json:"search_location"`
	Source         SourceName       `json:"source"`
	Synthetic      bool             `json:"synthetic"`
	Records        []BusinessRecord `json:"records"`
	ScrapedAt      time.Time        `json:"scraped_at"`
}

// Dedupe removes records whose name, non-empty phone, or non-empty email
// exactly matches an earlier record. First occurrence wins. Running it on an
// already-deduplicated slice returns an equal slice.
func Dedupe(records []BusinessRecord) []BusinessRecord {
	seenNames := make(map[string]bool, len(records))
	seenPhones := make(map[string]bool, len(records))
	seenEmails := make(map[string]bool, len(records))

	out := make([]BusinessRecord, 0, len(records))
	for _, r := range records {
		if seenNames[r.Name] {
			continue
		}
		if r.Phone != "" && seenPhones[r.Phone] {
			continue
		}
		if r.Email != "" && seenEmails[r.Email] {
			continue
		}
		seenNames[r.Name] = true
		if r.Phone != "" {
			seenPhones[r.Phone] = true
		}
		if r.Email != "" {
			seenEmails[r.Email] = true
		}
		out = append(out, r)
	}
	return out
}
