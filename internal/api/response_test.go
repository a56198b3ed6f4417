package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pezzottify/catalog-server/internal/apierr"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusCreated, map[string]string{"id": "abc"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Success || env.Error != nil {
		t.Errorf("expected success envelope, got %+v", env)
	}
}

func TestWriteError_KnownKind(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/content/track/xyz", nil)

	writeError(w, r, apierr.NotFound("track not found"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Error == nil || env.Error.Code != string(apierr.KindNotFound) {
		t.Errorf("expected not_found error envelope, got %+v", env)
	}
}

func TestWriteError_UnknownErrorBecomesOpaque500(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/content/track/xyz", nil)

	writeError(w, r, errors.New("some internal detail leaked from a driver"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "driver") {
		t.Error("internal error detail must not reach the client")
	}
}

func TestWriteError_InternalKindMessageIsScrubbed(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/content/track/xyz", nil)

	writeError(w, r, apierr.Wrap(apierr.KindInternal, "open audio file", errors.New("no such file: /secret/path")))

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Message != "internal error" {
		t.Errorf("expected scrubbed internal message, got %q", env.Error.Message)
	}
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)

	writeValidationError(w, r, "handle is required")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader("{bad"))
	var v map[string]string
	if apiErr := decodeJSON(r, &v); apiErr == nil {
		t.Error("expected a validation error for malformed JSON")
	}
}

func TestDecodeJSON_Valid(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"handle":"alice"}`))
	var v map[string]string
	if apiErr := decodeJSON(r, &v); apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if v["handle"] != "alice" {
		t.Errorf("expected decoded handle alice, got %q", v["handle"])
	}
}
