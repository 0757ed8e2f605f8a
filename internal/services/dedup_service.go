package services

import (
	"strings"

	"github.com/alimgiray/mailscope/internal/models"
)

// DedupService collapses repeated subscription mentions across a processed
// batch into canonical service entries, so "Netflix", "netflix" and
// "Netflix Inc." all count as one service.
type DedupService struct{}

func NewDedupService() *DedupService {
	return &DedupService{}
}

// corporateSuffixes are trailing tokens stripped during canonicalization
var corporateSuffixes = map[string]bool{
	"inc": true,
	"llc": true,
	"ltd": true,
	"co":  true,
}

// CanonicalKey normalizes a service name into its deduplication key:
// lower-cased, surrounding whitespace trimmed, internal whitespace collapsed,
// trailing corporate suffixes and their punctuation stripped. The mapping is
// pure and total; any input produces a valid key without error.
func (s *DedupService) CanonicalKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	tokens := strings.Fields(name)
	for len(tokens) > 1 {
		last := strings.Trim(tokens[len(tokens)-1], ".,")
		if !corporateSuffixes[last] {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) == 0 {
		return ""
	}

	// Trim punctuation left behind by a stripped suffix ("netflix," -> "netflix")
	tokens[len(tokens)-1] = strings.TrimRight(tokens[len(tokens)-1], ".,")

	return strings.Join(tokens, " ")
}

// Deduplicate groups processed emails by the canonical key of their extracted
// service name. Emails without a subscription name (failed extraction, or
// extraction that found nothing) are excluded. Within a group, occurrences
// keep first-seen input order; the first occurrence is the representative.
func (s *DedupService) Deduplicate(processed []models.ProcessedEmail) map[string]*models.CanonicalService {
	services := make(map[string]*models.CanonicalService)

	for _, email := range processed {
		if !email.SubscriptionInfo.HasName() {
			continue
		}

		key := s.CanonicalKey(*email.SubscriptionInfo.Name)
		if key == "" {
			continue
		}

		entry, exists := services[key]
		if !exists {
			entry = &models.CanonicalService{CanonicalName: key}
			services[key] = entry
		}
		entry.Occurrences = append(entry.Occurrences, *email.SubscriptionInfo)
		entry.Count = len(entry.Occurrences)
	}

	return services
}
