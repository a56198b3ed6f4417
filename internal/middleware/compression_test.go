package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompressionGzipsWhenAccepted(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(strings.Repeat("test data ", 200)))
	})
	wrapped := Compression(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
	}
	if rec.Header().Get("Content-Length") != "" {
		t.Fatal("expected Content-Length to be removed")
	}

	reader, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer reader.Close()
	decompressed, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read decompressed: %v", err)
	}
	if string(decompressed) != strings.Repeat("test data ", 200) {
		t.Fatal("decompressed body does not match what was written")
	}
}

func TestCompressionSkipsWithoutAcceptEncoding(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("uncompressed response"))
	})
	wrapped := Compression(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Fatal("should not compress when client sends no Accept-Encoding")
	}
	if rec.Body.String() != "uncompressed response" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestCompressionSkipsWebSocketUpgrades(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("websocket upgrade"))
	})
	wrapped := Compression(handler)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Fatal("websocket upgrades must not be compressed")
	}
}

func TestCompressionMatchesGzipAmongMultipleEncodings(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(strings.Repeat("data", 500)))
	})
	wrapped := Compression(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept-Encoding", "deflate, gzip, br")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatal("expected gzip to be selected from a multi-value Accept-Encoding header")
	}
}

func TestGzipResponseWriterWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	gz := gzip.NewWriter(rec)
	defer gz.Close()

	gzw := &gzipResponseWriter{Writer: gz, ResponseWriter: rec}
	gzw.WriteHeader(http.StatusCreated)

	if !gzw.wroteHeader {
		t.Fatal("expected wroteHeader to be true")
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestGzipResponseWriterWriteSetsDefaultStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	gz := gzip.NewWriter(rec)
	defer gz.Close()

	gzw := &gzipResponseWriter{Writer: gz, ResponseWriter: rec}
	n, err := gzw.Write([]byte("test data"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len("test data") {
		t.Fatalf("wrote %d bytes, want %d", n, len("test data"))
	}
	if !gzw.wroteHeader {
		t.Fatal("expected Write to set a default status")
	}
}
