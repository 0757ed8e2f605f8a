package models

// ServiceAnalytics summarizes cost data for one deduplicated service
type ServiceAnalytics struct {
	AverageAmount float64 `json:"average_amount"`
	Currency      *string `json:"currency"`
	Count         int     `json:"count"`
}

// DuplicateDetail describes a service mentioned in more than one email
type DuplicateDetail struct {
	Count    int     `json:"count"`
	Category *string `json:"category"`
}

// DeduplicatedService pairs the occurrence count with the representative
// SubscriptionInfo for one canonical service
type DeduplicatedService struct {
	Count            int              `json:"count"`
	SubscriptionInfo SubscriptionInfo `json:"subscription_info"`
}

// AnalyticsSnapshot is the dashboard-ready summary of one processed batch.
// It is recomputed in full from the ProcessedEmail set on every request and
// never mutated incrementally.
type AnalyticsSnapshot struct {
	TotalEmails                   int                            `json:"total_emails"`
	SuccessfulExtractions         int                            `json:"successful_extractions"`
	FailedExtractions             int                            `json:"failed_extractions"`
	AverageBodyLength             float64                        `json:"average_body_length"`
	CategoryDistribution          map[string]int                 `json:"category_distribution"`
	ServiceAnalytics              map[string]ServiceAnalytics    `json:"service_analytics"`
	DuplicateSubscriptionsDetails map[string]DuplicateDetail     `json:"duplicate_subscriptions_details"`
	DeduplicatedSubscriptions     map[string]DeduplicatedService `json:"deduplicated_subscriptions"`
}
