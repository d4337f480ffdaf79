package scraper

import "errors"

var (
	// ErrNoSession means FetchQuote was called before a browser session was opened.
	ErrNoSession = errors.New("no browser session")
	// ErrPageLoad covers opening, navigating and sizing the page.
	ErrPageLoad = errors.New("page load failed")
	// ErrQuoteRetrieval is returned when the price snapshot cannot be extracted.
	ErrQuoteRetrieval = errors.New("failed to retrieve quote")

	ErrElementMissing = errors.New("element missing")
	ErrMalformedValue = errors.New("malformed value")
)
