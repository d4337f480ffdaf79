//go:build e2e

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests drive a running api (and worker, unless WORKER_TYPE=chan)
// against the live quote site. Set E2E_BASE_URL to enable them.

const (
	readyTimeout       = 60 * time.Second
	readyPollInterval  = 500 * time.Millisecond
	statusPollTimeout  = 3 * time.Minute
	statusPollInterval = time.Second
	requestContentType = "application/json"
	idempotencyHeader  = "X-Idempotency-Key"
	e2eTicker          = "NVDA"
)

type pricePoint struct {
	Price string `json:"price"`
	Time  string `json:"time"`
}

type quote struct {
	Ticker          string       `json:"ticker"`
	LivePrice       pricePoint   `json:"live_price"`
	AfterHoursPrice pricePoint   `json:"after_hours_price"`
	PriceChart      []chartPoint `json:"price_chart"`
}

type chartPoint struct {
	Time  string `json:"time"`
	Price string `json:"price"`
}

type quoteUpdateResponse struct {
	UpdateID string `json:"update_id"`
}

type quoteUpdateDetails struct {
	UpdateID  string    `json:"update_id"`
	Ticker    string    `json:"ticker"`
	Status    string    `json:"status"`
	Error     *string   `json:"error"`
	UpdatedAt time.Time `json:"updated_at"`
	Quote     *quote    `json:"quote"`
}

func baseURL(t *testing.T) string {
	t.Helper()
	u := os.Getenv("E2E_BASE_URL")
	if u == "" {
		t.Skip("E2E_BASE_URL not set")
	}
	return u
}

func TestE2E_GetQuote(t *testing.T) {
	base := baseURL(t)
	waitForReady(t, base)

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Get(base + "/quotes/" + e2eTicker + "?time_frame=5D")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var q quote
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&q))
	assert.Equal(t, e2eTicker, q.Ticker)
	assert.NotEmpty(t, q.LivePrice.Price)
	assert.NotEmpty(t, q.AfterHoursPrice.Price)
	for i := 1; i < len(q.PriceChart); i++ {
		assert.NotEqual(t, q.PriceChart[i-1], q.PriceChart[i], "adjacent samples must differ")
	}
}

func TestE2E_QuoteUpdateFlow(t *testing.T) {
	base := baseURL(t)
	waitForReady(t, base)

	idem := "e2e-" + uuid.NewString()
	updateID := postUpdate(t, base, e2eTicker, idem, http.StatusAccepted)
	postUpdate(t, base, e2eTicker, idem, http.StatusConflict)

	det := waitForCompleted(t, base, updateID)
	require.NotNil(t, det.Quote)
	assert.Equal(t, e2eTicker, det.Quote.Ticker)
	assert.NotEmpty(t, det.Quote.LivePrice.Price)
}

func waitForReady(t *testing.T, base string) {
	t.Helper()
	deadline := time.Now().Add(readyTimeout)
	client := &http.Client{Timeout: 2 * time.Second}
	for time.Now().Before(deadline) {
		resp, err := client.Get(base + "/readyz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(readyPollInterval)
	}
	t.Fatalf("API did not become ready within %s", readyTimeout)
}

func postUpdate(t *testing.T, base, ticker, idem string, wantStatus int) string {
	t.Helper()
	data, _ := json.Marshal(map[string]string{"ticker": ticker, "time_frame": "1D"})
	req, err := http.NewRequest(http.MethodPost, base+"/quotes/updates", bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", requestContentType)
	req.Header.Set(idempotencyHeader, idem)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)
	if wantStatus != http.StatusAccepted {
		return ""
	}

	var out quoteUpdateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.UpdateID)
	return out.UpdateID
}

func waitForCompleted(t *testing.T, base, updateID string) quoteUpdateDetails {
	t.Helper()
	deadline := time.Now().Add(statusPollTimeout)
	client := &http.Client{Timeout: 5 * time.Second}
	for time.Now().Before(deadline) {
		det, ok := getUpdate(client, base, updateID)
		if ok {
			switch det.Status {
			case "completed":
				return det
			case "failed":
				t.Fatalf("update %s failed: %v", updateID, deref(det.Error))
			}
		}
		time.Sleep(statusPollInterval)
	}
	t.Fatalf("update %s did not complete within %s", updateID, statusPollTimeout)
	return quoteUpdateDetails{}
}

func getUpdate(client *http.Client, base, updateID string) (quoteUpdateDetails, bool) {
	resp, err := client.Get(base + "/quotes/updates/" + updateID)
	if err != nil {
		return quoteUpdateDetails{}, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return quoteUpdateDetails{}, false
	}
	var det quoteUpdateDetails
	if err := json.NewDecoder(resp.Body).Decode(&det); err != nil {
		return quoteUpdateDetails{}, false
	}
	return det, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
