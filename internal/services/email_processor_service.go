package services

import (
	"context"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/alimgiray/mailscope/internal/models"
	"github.com/alimgiray/mailscope/pkg/logger"
)

// EmailProcessorService runs the per-email pipeline (clean body, extract
// subscription facts) over a batch. Emails are processed concurrently up to
// a configurable limit; results always come back in input order.
type EmailProcessorService struct {
	sanitizer   *SanitizerService
	extractor   Extractor
	concurrency int
}

func NewEmailProcessorService(sanitizer *SanitizerService, extractor Extractor, concurrency int) *EmailProcessorService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &EmailProcessorService{
		sanitizer:   sanitizer,
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// ProcessBatch produces exactly one ProcessedEmail per input email, in input
// order. A failed extraction is recorded on that email and never aborts the
// rest of the batch. Canceling ctx stops dispatching new extraction calls;
// emails that never ran are marked with a cancellation error so the result
// slice still lines up index-for-index with the input.
func (s *EmailProcessorService) ProcessBatch(ctx context.Context, emails []models.RawEmail) []models.ProcessedEmail {
	results := make([]models.ProcessedEmail, len(emails))
	if len(emails) == 0 {
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range emails {
		// Stop issuing new calls once the batch is canceled; in-flight
		// calls drain on their own and keep their slots in results.
		if ctx.Err() != nil {
			msg := "batch canceled before extraction"
			for j := i; j < len(emails); j++ {
				results[j] = newProcessedEmail(emails[j], s.sanitizer.Clean(emails[j].Body))
				results[j].ExtractionError = &msg
			}
			break
		}

		idx := i
		email := emails[i]
		g.Go(func() error {
			results[idx] = s.processOne(gctx, email)
			return nil
		})
	}

	// Workers never return errors; Wait is only for completion.
	_ = g.Wait()

	return results
}

// processOne cleans and extracts a single email
func (s *EmailProcessorService) processOne(ctx context.Context, email models.RawEmail) models.ProcessedEmail {
	cleaned := s.sanitizer.Clean(email.Body)
	processed := newProcessedEmail(email, cleaned)

	info, err := s.extractor.Extract(ctx, email.Subject, cleaned)
	if err != nil {
		msg := err.Error()
		processed.ExtractionError = &msg
		logger.WithField("subject", email.Subject).Warnf("extraction failed: %v", err)
		return processed
	}

	processed.SubscriptionInfo = info
	return processed
}

func newProcessedEmail(email models.RawEmail, cleanedBody string) models.ProcessedEmail {
	return models.ProcessedEmail{
		Subject:    email.Subject,
		From:       email.From,
		// Character count, not bytes, so non-ASCII bodies are not inflated
		BodyLength: utf8.RuneCountInString(cleanedBody),
	}
}
