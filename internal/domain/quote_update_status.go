package domain

// QuoteUpdateStatus is the lifecycle state of an asynchronous quote update.
// Jobs move queued → processing → done|failed.
type QuoteUpdateStatus string

const (
	QuoteUpdateStatusQueued     QuoteUpdateStatus = "queued"
	QuoteUpdateStatusProcessing QuoteUpdateStatus = "processing"
	QuoteUpdateStatusDone       QuoteUpdateStatus = "done"
	QuoteUpdateStatusFailed     QuoteUpdateStatus = "failed"
)

// ParseQuoteUpdateStatus maps a stored status. Unknown values read as failed.
func ParseQuoteUpdateStatus(s string) QuoteUpdateStatus {
	switch st := QuoteUpdateStatus(s); st {
	case QuoteUpdateStatusQueued, QuoteUpdateStatusProcessing, QuoteUpdateStatusDone:
		return st
	default:
		return QuoteUpdateStatusFailed
	}
}

func (s QuoteUpdateStatus) Terminal() bool {
	return s == QuoteUpdateStatusDone || s == QuoteUpdateStatusFailed
}
