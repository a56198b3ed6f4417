package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/logging"
)

// envelope is the shape of every JSON response this package writes.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes data wrapped in a success envelope with status.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// writeNoContent writes a bare 204 with no body.
func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps err to its HTTP status and writes the error envelope.
// Unknown errors (not *apierr.Error) are logged with context and surfaced
// as an opaque 500, per the "unknown failures ... returned as 500 with no
// internal detail" propagation policy.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, ok := apierr.As(err)
	if !ok {
		logging.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		apiErr = apierr.New(apierr.KindInternal, "internal error")
	}

	body := &errorBody{
		Code:      string(apiErr.Kind),
		Message:   apiErr.Message,
		Reason:    apiErr.Reason,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if apiErr.Kind == apierr.KindInternal {
		body.Message = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status())
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: body})
}

// writeValidationError writes a 400 built from a validation failure.
func writeValidationError(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, apierr.ValidationFailure(message))
}

// decodeJSON decodes r's body into v, returning a *apierr.Error on
// malformed JSON so handlers can funnel it through writeError uniformly.
func decodeJSON(r *http.Request, v interface{}) *apierr.Error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.ValidationFailure("malformed request body")
	}
	return nil
}
