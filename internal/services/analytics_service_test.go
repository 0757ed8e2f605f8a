package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alimgiray/mailscope/internal/models"
)

func newAnalyticsService() *AnalyticsService {
	return NewAnalyticsService(NewDedupService())
}

func TestComputeSnapshotCounts(t *testing.T) {
	service := newAnalyticsService()

	errMsg := "extraction timed out"
	processed := []models.ProcessedEmail{
		subscriptionEmail("Netflix", nil, strPtr("streaming")),
		subscriptionEmail("Spotify", nil, nil),
		{ExtractionError: &errMsg},
		{SubscriptionInfo: &models.SubscriptionInfo{}},
	}

	snapshot := service.ComputeSnapshot(processed)

	assert.Equal(t, 4, snapshot.TotalEmails)
	assert.Equal(t, 3, snapshot.SuccessfulExtractions)
	assert.Equal(t, 1, snapshot.FailedExtractions)
	assert.Equal(t, snapshot.TotalEmails, snapshot.SuccessfulExtractions+snapshot.FailedExtractions)
}

func TestComputeSnapshotCategoryDistribution(t *testing.T) {
	service := newAnalyticsService()

	errMsg := "refused"
	processed := []models.ProcessedEmail{
		subscriptionEmail("Netflix", nil, strPtr("streaming")),
		subscriptionEmail("Hulu", nil, strPtr("streaming")),
		subscriptionEmail("Geico", nil, strPtr("insurance")),
		subscriptionEmail("Mystery", nil, nil),
		// No subscription info at all: excluded from the distribution
		{ExtractionError: &errMsg},
	}

	snapshot := service.ComputeSnapshot(processed)

	assert.Equal(t, map[string]int{
		"streaming": 2,
		"insurance": 1,
		"unknown":   1,
	}, snapshot.CategoryDistribution)
}

func TestComputeSnapshotAverageSkipsUnpricedOccurrences(t *testing.T) {
	service := newAnalyticsService()

	processed := []models.ProcessedEmail{
		subscriptionEmail("Netflix", floatPtr(9.99), nil),
		subscriptionEmail("Netflix", nil, nil),
		subscriptionEmail("Netflix", floatPtr(11.99), nil),
	}

	snapshot := service.ComputeSnapshot(processed)

	sa := snapshot.ServiceAnalytics["netflix"]
	assert.InDelta(t, 10.99, sa.AverageAmount, 0.0001)
	assert.Equal(t, 3, sa.Count)
}

func TestComputeSnapshotZeroPricedService(t *testing.T) {
	service := newAnalyticsService()

	processed := []models.ProcessedEmail{
		subscriptionEmail("Spotify", nil, nil),
		subscriptionEmail("Spotify", nil, nil),
	}

	snapshot := service.ComputeSnapshot(processed)

	sa, exists := snapshot.ServiceAnalytics["spotify"]
	assert.True(t, exists, "unpriced services still get an entry")
	assert.Equal(t, 0.0, sa.AverageAmount)
	assert.Equal(t, 2, sa.Count)
	assert.Nil(t, sa.Currency)
}

func TestComputeSnapshotCurrencyFromFirstPricedOccurrence(t *testing.T) {
	service := newAnalyticsService()

	first := subscriptionEmail("Netflix", nil, nil)
	second := subscriptionEmail("Netflix", floatPtr(12.99), nil)
	second.SubscriptionInfo.Currency = strPtr("EUR")
	third := subscriptionEmail("Netflix", floatPtr(15.49), nil)
	third.SubscriptionInfo.Currency = strPtr("USD")

	snapshot := service.ComputeSnapshot([]models.ProcessedEmail{first, second, third})

	sa := snapshot.ServiceAnalytics["netflix"]
	assert.Equal(t, "EUR", *sa.Currency)
}

func TestComputeSnapshotDuplicateReporting(t *testing.T) {
	service := newAnalyticsService()

	processed := []models.ProcessedEmail{
		subscriptionEmail("Netflix", floatPtr(15.49), strPtr("streaming")),
		subscriptionEmail("netflix", floatPtr(15.49), strPtr("streaming")),
		subscriptionEmail("Netflix Inc.", floatPtr(15.49), strPtr("streaming")),
		subscriptionEmail("Spotify", floatPtr(9.99), strPtr("music")),
	}

	snapshot := service.ComputeSnapshot(processed)

	// All three variants collapse into one service
	assert.InDelta(t, 15.49, snapshot.ServiceAnalytics["netflix"].AverageAmount, 0.0001)
	assert.Equal(t, 3, snapshot.ServiceAnalytics["netflix"].Count)

	// Only services mentioned more than once appear in the duplicate report
	assert.Len(t, snapshot.DuplicateSubscriptionsDetails, 1)
	detail := snapshot.DuplicateSubscriptionsDetails["netflix"]
	assert.Equal(t, 3, detail.Count)
	assert.Equal(t, "streaming", *detail.Category)

	// Deduplicated view lists every service regardless of count
	assert.Len(t, snapshot.DeduplicatedSubscriptions, 2)
	assert.Equal(t, "Netflix", *snapshot.DeduplicatedSubscriptions["netflix"].SubscriptionInfo.Name)
	assert.Equal(t, 1, snapshot.DeduplicatedSubscriptions["spotify"].Count)
}

func TestComputeSnapshotEmptyBatch(t *testing.T) {
	service := newAnalyticsService()

	snapshot := service.ComputeSnapshot(nil)

	assert.Equal(t, 0, snapshot.TotalEmails)
	assert.Equal(t, 0, snapshot.SuccessfulExtractions)
	assert.Equal(t, 0, snapshot.FailedExtractions)
	assert.Equal(t, 0.0, snapshot.AverageBodyLength)
	assert.Empty(t, snapshot.CategoryDistribution)
	assert.Empty(t, snapshot.ServiceAnalytics)
	assert.Empty(t, snapshot.DuplicateSubscriptionsDetails)
	assert.Empty(t, snapshot.DeduplicatedSubscriptions)
}

func TestComputeSnapshotAverageBodyLength(t *testing.T) {
	service := newAnalyticsService()

	processed := []models.ProcessedEmail{
		{BodyLength: 100},
		{BodyLength: 300},
	}

	snapshot := service.ComputeSnapshot(processed)

	assert.Equal(t, 200.0, snapshot.AverageBodyLength)
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}
