package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alimgiray/mailscope/internal/models"
)

func TestParseSubscriptionResponse(t *testing.T) {
	testCases := []struct {
		name      string
		response  string
		expectErr bool
		check     func(t *testing.T, info *models.SubscriptionInfo)
	}{
		{
			name:     "Complete response",
			response: `{"name": "Netflix", "cost": 15.49, "currency": "USD", "billing_cycle": "monthly", "category": "streaming", "confidence": 0.95}`,
			check: func(t *testing.T, info *models.SubscriptionInfo) {
				assert.Equal(t, "Netflix", *info.Name)
				assert.Equal(t, 15.49, *info.Cost)
				assert.Equal(t, "USD", *info.Currency)
				assert.Equal(t, models.CycleMonthly, *info.BillingCycle)
				assert.Equal(t, "streaming", *info.Category)
				assert.Equal(t, 0.95, *info.Confidence)
			},
		},
		{
			name:     "Markdown fenced response",
			response: "```json\n{\"name\": \"Spotify\", \"cost\": 9.99}\n```",
			check: func(t *testing.T, info *models.SubscriptionInfo) {
				assert.Equal(t, "Spotify", *info.Name)
				assert.Equal(t, 9.99, *info.Cost)
			},
		},
		{
			name:     "No subscription found is a valid empty result",
			response: `{"name": null, "cost": null, "currency": null, "billing_cycle": null, "category": null, "confidence": 0.99}`,
			check: func(t *testing.T, info *models.SubscriptionInfo) {
				assert.Nil(t, info.Name)
				assert.Nil(t, info.Cost)
				assert.Equal(t, 0.99, *info.Confidence)
				assert.False(t, info.HasName())
			},
		},
		{
			name:     "Unrecognized billing cycle normalized to unknown",
			response: `{"name": "Gym", "billing_cycle": "bi-weekly"}`,
			check: func(t *testing.T, info *models.SubscriptionInfo) {
				assert.Equal(t, models.CycleUnknown, *info.BillingCycle)
			},
		},
		{
			name:     "Billing cycle case insensitive",
			response: `{"name": "Gym", "billing_cycle": "Monthly"}`,
			check: func(t *testing.T, info *models.SubscriptionInfo) {
				assert.Equal(t, models.CycleMonthly, *info.BillingCycle)
			},
		},
		{
			name:      "Refusal text is a failure, not an empty result",
			response:  "I cannot extract subscription information from this email.",
			expectErr: true,
		},
		{
			name:      "Truncated JSON is a failure",
			response:  `{"name": "Netflix", "cost": 15.`,
			expectErr: true,
		},
		{
			name:      "Empty response is a failure",
			response:  "",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := ParseSubscriptionResponse(tc.response)
			if tc.expectErr {
				assert.Error(t, err)
				assert.Nil(t, info)
				return
			}
			assert.NoError(t, err)
			if tc.check != nil {
				tc.check(t, info)
			}
		})
	}
}

func TestExtractionErrorMessage(t *testing.T) {
	err := &ExtractionError{Message: "rate limited", Retryable: true}
	assert.Equal(t, "rate limited", err.Error())
	assert.True(t, err.Retryable)
}
