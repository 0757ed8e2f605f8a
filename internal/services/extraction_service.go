package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/alimgiray/mailscope/internal/models"
	"github.com/alimgiray/mailscope/pkg/logger"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// ExtractionError is a per-email failure to obtain valid structured data
// from the extraction model. Retryable signals whether an outer layer could
// reasonably try again (rate limits, timeouts, server errors); this service
// itself never retries.
type ExtractionError struct {
	Message   string
	Retryable bool
}

func (e *ExtractionError) Error() string {
	return e.Message
}

// Extractor turns a cleaned email into structured subscription fields.
// Implementations return either a SubscriptionInfo (possibly with all fields
// empty when the email carries no subscription content) or an *ExtractionError.
type Extractor interface {
	Extract(ctx context.Context, subject, cleanedBody string) (*models.SubscriptionInfo, error)
}

// ExtractionService calls the Anthropic Messages API to extract subscription
// facts from one cleaned email at a time.
type ExtractionService struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

func NewExtractionService(apiKey, model string, timeoutSeconds int) *ExtractionService {
	if model == "" {
		model = defaultAnthropicModel
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	return &ExtractionService{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: time.Duration(timeoutSeconds) * time.Second,
	}
}

const extractionSystemPrompt = `You are an expert at structured data extraction. You will be given one email (subject and cleaned plain-text body).

Extract the following subscription information:

name: string or null          // Subscription name or service provider
cost: number or null          // Subscription cost if stated
currency: string or null      // e.g. USD, EUR
billing_cycle: string or null // one of: monthly, yearly, weekly, unknown
category: string or null      // e.g. streaming, insurance, utility, software
confidence: number or null    // 0..1, how confident you are in the extraction

If the email is not about a subscription, return nulls for every field except confidence.

Respond with a single JSON object only (no markdown, no commentary):
{"name": "Netflix", "cost": 15.49, "currency": "USD", "billing_cycle": "monthly", "category": "streaming", "confidence": 0.95}`

// Extract sends one email to the model and validates the response shape.
// A response that is not parseable JSON (truncated output, refusal text) is
// an ExtractionError, never an empty result: callers must be able to tell
// "no subscription found" apart from "extraction failed".
func (s *ExtractionService) Extract(ctx context.Context, subject, cleanedBody string) (*models.SubscriptionInfo, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Subject: %s\nBody: %s", subject, cleanedBody)

	message, err := s.client.Messages.New(callCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: extractionSystemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		logger.WithError(err).Warnf("extraction api call failed")
		return nil, &ExtractionError{
			Message:   fmt.Sprintf("anthropic api error: %v", err),
			Retryable: isRetryable(err),
		}
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return nil, &ExtractionError{Message: "no text content in model response"}
	}

	info, parseErr := ParseSubscriptionResponse(responseText)
	if parseErr != nil {
		return nil, &ExtractionError{Message: parseErr.Error()}
	}
	return info, nil
}

// ParseSubscriptionResponse validates the model's output against the
// SubscriptionInfo shape. Markdown fences are tolerated; anything that does
// not decode to a JSON object is an error.
func ParseSubscriptionResponse(responseText string) (*models.SubscriptionInfo, error) {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var info models.SubscriptionInfo
	if err := json.Unmarshal([]byte(responseText), &info); err != nil {
		truncated := responseText
		if len(truncated) > 256 {
			truncated = truncated[:256] + "..."
		}
		return nil, fmt.Errorf("parsing extraction response: %w (response: %s)", err, truncated)
	}

	normalizeBillingCycle(&info)
	return &info, nil
}

// normalizeBillingCycle maps cycle values outside the recognized set
// (the model occasionally emits bi-weekly, quarterly and similar) to unknown
func normalizeBillingCycle(info *models.SubscriptionInfo) {
	if info.BillingCycle == nil {
		return
	}
	cycle := strings.ToLower(strings.TrimSpace(*info.BillingCycle))
	switch cycle {
	case models.CycleMonthly, models.CycleYearly, models.CycleWeekly:
		info.BillingCycle = &cycle
	case "":
		info.BillingCycle = nil
	default:
		unknown := models.CycleUnknown
		info.BillingCycle = &unknown
	}
}

// isRetryable classifies transport failures an outer layer may retry
func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 408, 429, 500, 502, 503, 504, 529:
			return true
		}
	}
	return false
}
