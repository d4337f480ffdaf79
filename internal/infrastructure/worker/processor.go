package worker

import (
	"context"

	"yfquote-service/internal/application"
	"yfquote-service/internal/domain"
)

// Processor runs a single quote update job.
type Processor interface {
	ProcessQuoteUpdate(ctx context.Context, job domain.QuoteUpdate, source string) error
	FailQuoteUpdate(ctx context.Context, id, msg string)
}

var _ Processor = (*application.QuoteService)(nil)

// JobRecorder counts finished jobs by final status.
type JobRecorder interface {
	UpdateJobFinished(status string)
}

type nopJobRecorder struct{}

func (nopJobRecorder) UpdateJobFinished(string) {}

func finalStatus(err error) string {
	if err != nil {
		return string(domain.QuoteUpdateStatusFailed)
	}
	return string(domain.QuoteUpdateStatusDone)
}
