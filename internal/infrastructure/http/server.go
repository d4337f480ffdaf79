package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"yfquote-service/internal/application"
	"yfquote-service/internal/domain"
	"yfquote-service/internal/infrastructure/logx"
	"yfquote-service/internal/scraper"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"
)

// QuoteAPI is the set of use cases served over HTTP.
type QuoteAPI interface {
	GetQuote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error)
	RequestQuoteUpdate(ctx context.Context, req domain.QuoteRequest, idem *string) (string, error)
	GetQuoteUpdate(ctx context.Context, id string) (domain.QuoteUpdate, error)
}

var _ QuoteAPI = (*application.QuoteService)(nil)

// HTTPMetrics records per-route request counts and latency.
type HTTPMetrics interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
	Handler() http.Handler
}

type readyCheck struct {
	name string
	fn   func(context.Context) error
}

type Server struct {
	svc            QuoteAPI
	requestTimeout time.Duration
	checks         []readyCheck
	metrics        HTTPMetrics
}

func NewServer(svc QuoteAPI, requestTimeout time.Duration) *Server {
	return &Server{svc: svc, requestTimeout: requestTimeout}
}

// SetReadyCheck adds a dependency probed by /readyz. A failing check answers
// 503 with "<name> not ready".
func (s *Server) SetReadyCheck(name string, fn func(context.Context) error) {
	s.checks = append(s.checks, readyCheck{name: name, fn: fn})
}

func (s *Server) SetMetrics(m HTTPMetrics) { s.metrics = m }

type quoteUpdateRequest struct {
	Ticker    string `json:"ticker"`
	TimeFrame string `json:"time_frame,omitempty"`
}

type quoteUpdateResponse struct {
	UpdateID string `json:"update_id"`
}

type quoteUpdateDetails struct {
	UpdateID  string        `json:"update_id"`
	Ticker    string        `json:"ticker"`
	TimeFrame *string       `json:"time_frame,omitempty"`
	Status    string        `json:"status"`
	Error     *string       `json:"error,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
	Quote     *domain.Quote `json:"quote,omitempty"`
}

// GetQuote handles GET /quotes/{ticker}?time_frame=.
func (s *Server) GetQuote(w http.ResponseWriter, r *http.Request) {
	var ticker string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "ticker", runtime.ParamLocationPath, chi.URLParam(r, "ticker"), &ticker); err != nil {
		writeError(w, http.StatusBadRequest, "invalid ticker")
		return
	}
	var timeFrame *string
	if err := runtime.BindQueryParameter("form", true, false, "time_frame", r.URL.Query(), &timeFrame); err != nil {
		writeError(w, http.StatusBadRequest, "invalid time_frame")
		return
	}

	req, err := application.ParseQuoteRequest(ticker, deref(timeFrame))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	ctx := r.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}
	q, err := s.svc.GetQuote(ctx, req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// RequestQuoteUpdate handles POST /quotes/updates.
func (s *Server) RequestQuoteUpdate(w http.ResponseWriter, r *http.Request) {
	var body quoteUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	req, err := application.ParseQuoteRequest(body.Ticker, body.TimeFrame)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	var idem *string
	if k := r.Header.Get("X-Idempotency-Key"); k != "" {
		idem = &k
	}
	id, err := s.svc.RequestQuoteUpdate(r.Context(), req, idem)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, quoteUpdateResponse{UpdateID: id})
}

// GetQuoteUpdate handles GET /quotes/updates/{id}.
func (s *Server) GetQuoteUpdate(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "id", runtime.ParamLocationPath, chi.URLParam(r, "id"), &id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	upd, err := s.svc.GetQuoteUpdate(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	resp := quoteUpdateDetails{
		UpdateID:  upd.ID,
		Ticker:    string(upd.Request.Ticker),
		Status:    mapStatus(upd.Status),
		Error:     upd.Error,
		UpdatedAt: upd.UpdatedAt,
		Quote:     upd.Result,
	}
	if upd.Request.TimeFrame != nil {
		tf := string(*upd.Request.TimeFrame)
		resp.TimeFrame = &tf
	}
	if !upd.Status.Terminal() {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, http.StatusOK, resp)
}

// serviceError maps application and scraper errors onto HTTP statuses.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logx.WithFields(r.Context()).Warn("http.request_failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	writeError(w, status, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, application.ErrConflict):
		return http.StatusConflict, "duplicate idempotency key"
	case errors.Is(err, scraper.ErrNoSession):
		return http.StatusServiceUnavailable, "browser session not open"
	case errors.Is(err, scraper.ErrQuoteRetrieval), errors.Is(err, scraper.ErrPageLoad):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

func mapStatus(s domain.QuoteUpdateStatus) string {
	switch s {
	case domain.QuoteUpdateStatusDone:
		return "completed"
	case domain.QuoteUpdateStatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Code: status, Message: msg})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
