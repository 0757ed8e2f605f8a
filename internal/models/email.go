package models

// RawEmail is a single uploaded email record. Subject and body are the
// minimally required fields; snippet and from are optional.
type RawEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Snippet string `json:"snippet,omitempty"`
	From    string `json:"from,omitempty"`
}

// BillingCycle values recognized in extracted subscription data
const (
	CycleMonthly = "monthly"
	CycleYearly  = "yearly"
	CycleWeekly  = "weekly"
	CycleUnknown = "unknown"
)

// SubscriptionInfo holds the structured fields extracted from one email.
// Every field is optional: an email that carries no subscription content
// yields an empty (but non-nil) SubscriptionInfo.
type SubscriptionInfo struct {
	Name         *string  `json:"name"`
	Cost         *float64 `json:"cost"`
	Currency     *string  `json:"currency"`
	BillingCycle *string  `json:"billing_cycle"`
	Category     *string  `json:"category"`
	Confidence   *float64 `json:"confidence"`
}

// HasName reports whether the extraction produced a non-empty service name
func (s *SubscriptionInfo) HasName() bool {
	return s != nil && s.Name != nil && *s.Name != ""
}

// ProcessedEmail is the per-email result of the pipeline. Exactly one of
// SubscriptionInfo / ExtractionError is set: a failed extraction leaves
// SubscriptionInfo nil and records the failure message.
type ProcessedEmail struct {
	Subject          string            `json:"subject"`
	From             string            `json:"from"`
	BodyLength       int               `json:"body_length"`
	SubscriptionInfo *SubscriptionInfo `json:"subscription_info"`
	ExtractionError  *string           `json:"extraction_error"`
}

// Succeeded reports whether extraction produced a usable result for this email
func (p *ProcessedEmail) Succeeded() bool {
	return p.ExtractionError == nil
}
