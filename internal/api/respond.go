package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kreinecke/moneyfmt/internal/currency"
)

// maxRequestBodyBytes caps JSON request bodies. A full batch of long amounts
// fits well within it.
const maxRequestBodyBytes = 1 << 20

var amountSuggestion = fmt.Sprintf(
	"use digits with an optional sign, decimal point and comma grouping, at most %d integer digits",
	currency.MaxIntegerDigits)

// errorResponse is the body of every JSON error reply.
type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// writeJSON marshals payload before any header is written.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal error"}` + "\n"))
		return
	}
	body = append(body, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// respondError stamps resp with the request ID, records the failure on the
// access log entry and writes it.
func respondError(w http.ResponseWriter, r *http.Request, status int, resp errorResponse) {
	resp.RequestID = requestIDFromContext(r.Context())
	annotate(r.Context(), zap.String("error", resp.Error), zap.String("error_details", resp.Details))
	writeJSON(w, status, resp)
}

// respondAmountError maps an amount failure on field to a response.
func respondAmountError(w http.ResponseWriter, r *http.Request, field string, err error) {
	switch {
	case errors.Is(err, errMissingAmount):
		respondError(w, r, http.StatusBadRequest, errorResponse{
			Error:   "Invalid request",
			Details: field + " is required",
		})
	case errors.Is(err, currency.ErrInvalidAmount):
		respondError(w, r, http.StatusBadRequest, errorResponse{
			Error:      "Invalid amount",
			Details:    field + ": " + err.Error(),
			Suggestion: amountSuggestion,
		})
	default:
		respondError(w, r, http.StatusInternalServerError, errorResponse{
			Error:   "Internal error",
			Details: err.Error(),
		})
	}
}

// decodeBody reads a size-limited JSON body into dst. It writes the error
// response itself and reports whether the handler should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, r, http.StatusRequestEntityTooLarge, errorResponse{
			Error:      "Request too large",
			Details:    "request body exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
			Suggestion: "split the request into smaller batches",
		})
		return false
	}
	respondError(w, r, http.StatusBadRequest, errorResponse{
		Error:      "Invalid request",
		Details:    "unable to parse JSON payload",
		Suggestion: "amount must be a JSON number or a numeric string",
	})
	return false
}
