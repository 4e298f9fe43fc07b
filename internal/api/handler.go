package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kreinecke/moneyfmt/internal/currency"
)

type contextKey string

const (
	requestIDContextKey   contextKey = "requestID"
	accessNotesContextKey contextKey = "accessNotes"
)

const defaultMaxBatchSize = 500

var errMissingAmount = errors.New("amount is required")

// Handler wires the currency formatter into HTTP handlers.
type Handler struct {
	formatter currency.Formatter

	clock        func() time.Time
	maxBatchSize int
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMaxBatchSize caps the number of items accepted by the batch endpoint.
// Non-positive values keep the default.
func WithMaxBatchSize(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxBatchSize = n
		}
	}
}

// NewHandler constructs a Handler with the provided formatter.
func NewHandler(formatter currency.Formatter, opts ...HandlerOption) *Handler {
	h := &Handler{
		formatter:    formatter,
		maxBatchSize: defaultMaxBatchSize,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, currenciesResponse{Currencies: currency.Known()})
}

func (h *Handler) handleFormatQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("amount") {
		respondError(w, r, http.StatusBadRequest, errorResponse{
			Error:   "Invalid request",
			Details: "amount query parameter is required",
		})
		return
	}

	amount, err := currency.ParseAmount(query.Get("amount"))
	if err != nil {
		respondAmountError(w, r, "amount", err)
		return
	}

	var code *string
	if query.Has("currency") {
		c := query.Get("currency")
		code = &c
	}

	resp := h.format(amount, code)
	noteFormat(r.Context(), resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := req.Amount.parse()
	if err != nil {
		respondAmountError(w, r, "amount", err)
		return
	}

	resp := h.format(amount, req.Currency)
	noteFormat(r.Context(), resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleFormatBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if len(req.Items) == 0 {
		respondError(w, r, http.StatusBadRequest, errorResponse{
			Error:   "Invalid batch",
			Details: "items must contain at least one entry",
		})
		return
	}
	if len(req.Items) > h.maxBatchSize {
		respondError(w, r, http.StatusBadRequest, errorResponse{
			Error:      "Invalid batch",
			Details:    fmt.Sprintf("items must contain at most %d entries, got %d", h.maxBatchSize, len(req.Items)),
			Suggestion: "split the request into smaller batches",
		})
		return
	}

	// Every amount is validated before any is formatted.
	amounts := make([]decimal.Decimal, len(req.Items))
	for i, item := range req.Items {
		amount, err := item.Amount.parse()
		if err != nil {
			respondAmountError(w, r, fmt.Sprintf("items[%d].amount", i), err)
			return
		}
		amounts[i] = amount
	}

	results := make([]formatResponse, len(req.Items))
	for i, item := range req.Items {
		results[i] = h.format(amounts[i], item.Currency)
	}

	annotate(r.Context(), zap.Int("items", len(results)))
	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

func (h *Handler) format(amount decimal.Decimal, code *string) formatResponse {
	return formatResponse{
		Amount:    amount.String(),
		Currency:  code,
		Formatted: h.formatter.Format(amount, currency.CodeFromPtr(code)),
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type formatRequest struct {
	Amount   *amountField `json:"amount"`
	Currency *string      `json:"currency"`
}

// amountField holds the raw text of a JSON number or string amount. Parsing
// is left to currency.ParseAmount so JSON input gets the same bounds as query
// strings.
type amountField string

func (a *amountField) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	*a = amountField(data)
	return nil
}

func (a *amountField) parse() (decimal.Decimal, error) {
	if a == nil {
		return decimal.Zero, errMissingAmount
	}
	return currency.ParseAmount(string(*a))
}

type batchRequest struct {
	Items []formatRequest `json:"items"`
}

type formatResponse struct {
	Amount    string  `json:"amount"`
	Currency  *string `json:"currency"`
	Formatted string  `json:"formatted"`
}

type batchResponse struct {
	Results []formatResponse `json:"results"`
}

type currenciesResponse struct {
	Currencies []currency.Symbol `json:"currencies"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
