package models

// CanonicalService is a deduplication bucket for one subscription service.
// Every processed email whose extracted name normalizes to the same canonical
// key lands in the same bucket.
type CanonicalService struct {
	CanonicalName string             `json:"canonical_name"`
	Occurrences   []SubscriptionInfo `json:"occurrences"` // first-seen input order
	Count         int                `json:"count"`
}

// Representative returns the SubscriptionInfo shown to the user for this
// service: the first-seen occurrence. Confidence is informational only and
// never drives this choice.
func (c *CanonicalService) Representative() SubscriptionInfo {
	if len(c.Occurrences) == 0 {
		return SubscriptionInfo{}
	}
	return c.Occurrences[0]
}
