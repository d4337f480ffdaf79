package scraper

import "context"

//go:generate mockgen -destination=mock_session_test.go -package=scraper yfquote-service/internal/scraper Session,SessionSource

// Session is a live browser that can open pages. Implementations must allow
// NewPage to be called from many goroutines at once.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
}

// SessionSource hands out the currently open Session, if any.
type SessionSource interface {
	Current() (Session, bool)
}

// Page is one browser tab owned by a single request.
type Page interface {
	DOMReader

	Navigate(ctx context.Context, url string) error
	SetViewport(ctx context.Context, width, height int) error
	Close(ctx context.Context) error

	Hover(ctx context.Context, selector string) error
	MovePointer(ctx context.Context, x, y float64) error
	Click(ctx context.Context, selector string) error
	// QuerySelector returns nil with a nil error when nothing matches.
	QuerySelector(ctx context.Context, selector string) (Element, error)
}

type Element interface {
	IsVisible(ctx context.Context) (bool, error)
}

// DOMReader reads specific fields from the rendered document.
type DOMReader interface {
	ReadAnchor(ctx context.Context, a Anchor) (AnchorReading, error)
	// ReadText returns the text content of the first element matching selector.
	// found is false when nothing matches.
	ReadText(ctx context.Context, selector string) (text string, found bool, err error)
}

// Anchor locates a streaming price element and the relatives that carry its
// change, percent change and as-of time. Indexes address children of the
// anchor's parent (change, percent) and of its grandparent (time).
type Anchor struct {
	Name         string
	Selector     string
	ChangeIndex  int
	PercentIndex int
	TimeIndex    int
}

// AnchorReading holds the texts read for an Anchor. A nil field means the
// element at that position was absent.
type AnchorReading struct {
	Found         bool
	Value         *string
	Change        *string
	ChangePercent *string
	Time          *string
}
