package scraper

import "time"

const (
	OutcomeSuccess         = "success"
	OutcomeNoSession       = "no_session"
	OutcomePageLoadError   = "page_load_error"
	OutcomeExtractionError = "extraction_error"
)

const (
	AbortReasonTooltipMissing = "tooltip_missing"
	AbortReasonFault          = "fault"
	AbortReasonNoStrategy     = "no_strategy"
	AbortReasonCanceled       = "canceled"
)

// Recorder receives fetch and sampling observations.
type Recorder interface {
	FetchObserved(outcome string, elapsed time.Duration)
	ChartSampled(samples int)
	SamplingAborted(reason string)
}

type nopRecorder struct{}

func (nopRecorder) FetchObserved(string, time.Duration) {}
func (nopRecorder) ChartSampled(int)                    {}
func (nopRecorder) SamplingAborted(string)              {}
