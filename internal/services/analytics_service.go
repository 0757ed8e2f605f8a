package services

import (
	"github.com/alimgiray/mailscope/internal/models"
)

// AnalyticsService turns a processed batch and its deduplicated view into a
// dashboard-ready snapshot. Every call recomputes from scratch over the full
// ProcessedEmail set, so a snapshot is always internally consistent.
type AnalyticsService struct {
	dedupService *DedupService
}

func NewAnalyticsService(dedupService *DedupService) *AnalyticsService {
	return &AnalyticsService{dedupService: dedupService}
}

// categoryUnknown is the bucket for extractions without a category
const categoryUnknown = "unknown"

// ComputeSnapshot aggregates a processed batch into an AnalyticsSnapshot
func (s *AnalyticsService) ComputeSnapshot(processed []models.ProcessedEmail) *models.AnalyticsSnapshot {
	services := s.dedupService.Deduplicate(processed)

	snapshot := &models.AnalyticsSnapshot{
		TotalEmails:                   len(processed),
		CategoryDistribution:          make(map[string]int),
		ServiceAnalytics:              make(map[string]models.ServiceAnalytics),
		DuplicateSubscriptionsDetails: make(map[string]models.DuplicateDetail),
		DeduplicatedSubscriptions:     make(map[string]models.DeduplicatedService),
	}

	totalBodyLength := 0
	for _, email := range processed {
		totalBodyLength += email.BodyLength

		if email.Succeeded() {
			snapshot.SuccessfulExtractions++
		} else {
			snapshot.FailedExtractions++
		}

		// Category counts cover every email that produced subscription info,
		// named or not; emails with no info at all are excluded.
		if email.SubscriptionInfo != nil {
			category := categoryUnknown
			if email.SubscriptionInfo.Category != nil && *email.SubscriptionInfo.Category != "" {
				category = *email.SubscriptionInfo.Category
			}
			snapshot.CategoryDistribution[category]++
		}
	}

	if len(processed) > 0 {
		snapshot.AverageBodyLength = float64(totalBodyLength) / float64(len(processed))
	}

	for key, service := range services {
		snapshot.ServiceAnalytics[key] = computeServiceAnalytics(service)

		representative := service.Representative()
		snapshot.DeduplicatedSubscriptions[key] = models.DeduplicatedService{
			Count:            service.Count,
			SubscriptionInfo: representative,
		}

		if service.Count > 1 {
			snapshot.DuplicateSubscriptionsDetails[key] = models.DuplicateDetail{
				Count:    service.Count,
				Category: representative.Category,
			}
		}
	}

	return snapshot
}

// computeServiceAnalytics averages cost over the occurrences that carry one.
// A service with no priced occurrence reports an explicit zero average while
// Count still reflects every occurrence. Currency comes from the first
// occurrence that has one.
func computeServiceAnalytics(service *models.CanonicalService) models.ServiceAnalytics {
	var costSum float64
	pricedCount := 0
	var currency *string

	for i := range service.Occurrences {
		occ := &service.Occurrences[i]
		if occ.Cost != nil {
			costSum += *occ.Cost
			pricedCount++
		}
		if currency == nil && occ.Currency != nil && *occ.Currency != "" {
			currency = occ.Currency
		}
	}

	average := 0.0
	if pricedCount > 0 {
		average = costSum / float64(pricedCount)
	}

	return models.ServiceAnalytics{
		AverageAmount: average,
		Currency:      currency,
		Count:         service.Count,
	}
}
