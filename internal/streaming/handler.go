package streaming

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/bandwidth"
	"github.com/pezzottify/catalog-server/internal/catalog"
	"github.com/pezzottify/catalog-server/internal/logging"
)

const (
	minChunkSize = 64 * 1024
	maxChunkSize = 512 * 1024
)

// trackGetter is the slice of catalog.Store the streaming handler actually
// needs, kept narrow so tests don't have to stub the full store contract.
type trackGetter interface {
	GetTrack(ctx context.Context, id string) (*catalog.Track, error)
}

// auditor records that a user downloaded a piece of content. Satisfied by
// *internal/audit.Logger; kept as an interface so tests don't need a real
// server.db, and nil-safe so callers that don't care about the audit trail
// can leave it unset.
type auditor interface {
	Record(userID, contentID string, contentType catalog.ContentType)
}

// Handler serves track audio over HTTP with range-request support.
type Handler struct {
	Store       trackGetter
	AudioDir    string
	Tracker     *bandwidth.Tracker
	Auditor     auditor
	CacheMaxAge time.Duration
	ChunkSize   int
}

// NewHandler constructs a Handler, clamping chunkSize into the 64-512 KiB
// span a streamed range response is sent in. auditLogger may be nil.
func NewHandler(store trackGetter, audioDir string, tracker *bandwidth.Tracker, auditLogger auditor, cacheMaxAge time.Duration, chunkSize int) *Handler {
	switch {
	case chunkSize < minChunkSize:
		chunkSize = minChunkSize
	case chunkSize > maxChunkSize:
		chunkSize = maxChunkSize
	}
	return &Handler{Store: store, AudioDir: audioDir, Tracker: tracker, Auditor: auditLogger, CacheMaxAge: cacheMaxAge, ChunkSize: chunkSize}
}

// ServeTrack resolves the track, validates the range, and streams the
// requested bytes. Permission enforcement happens in middleware upstream;
// userID is the already-authenticated caller. There is no per-user
// bandwidth quota enforced anywhere in this server: Tracker records bytes
// served for the daily rollup job, but nothing caps a user's consumption
// against a policy. No config key exists for such a policy today.
func (h *Handler) ServeTrack(w http.ResponseWriter, r *http.Request, trackID, userID string) {
	ctx := r.Context()
	track, err := h.Store.GetTrack(ctx, trackID)
	if err != nil {
		writeAPIError(w, apierr.Wrap(apierr.KindInternal, "look up track", err))
		return
	}
	if track == nil {
		writeAPIError(w, apierr.NotFound("track not found: "+trackID))
		return
	}
	if track.Availability != catalog.AvailabilityAvailable {
		writeAPIError(w, apierr.NotFound("track audio not available: "+trackID))
		return
	}
	if h.Auditor != nil {
		h.Auditor.Record(userID, trackID, catalog.ContentTrack)
	}

	path := filepath.Join(h.AudioDir, filepath.FromSlash(track.AudioURI))
	f, err := os.Open(path)
	if err != nil {
		writeAPIError(w, apierr.Wrap(apierr.KindInternal, "open audio file", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeAPIError(w, apierr.Wrap(apierr.KindInternal, "stat audio file", err))
		return
	}
	size := info.Size()

	etag := etagFor(trackID, info)
	w.Header().Set("ETag", etag)
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int(h.CacheMaxAge.Seconds())))
	w.Header().Set("Content-Type", "audio/mpeg")

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	rng, hasRange, rngErr := parseRange(r.Header.Get("Range"), size)
	if rngErr != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		writeAPIError(w, rngErr)
		return
	}

	start, length := int64(0), size
	status := http.StatusOK
	if hasRange {
		start, length = rng.start, rng.length()
		status = http.StatusPartialContent
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.start, rng.end, size))
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", length))
	w.WriteHeader(status)

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("track_id", trackID).Msg("seek failed")
		return
	}

	sent := h.copyChunked(ctx, w, f, length)
	if sent > 0 && h.Tracker != nil {
		h.Tracker.Record(userID, sent)
	}
}

// copyChunked streams up to n bytes from src to dst in ChunkSize pieces,
// returning the number of bytes actually written. It stops early, without
// error, on client disconnect or a write failure, so the caller can still
// record the partial transfer.
func (h *Handler) copyChunked(ctx context.Context, dst io.Writer, src io.Reader, n int64) int64 {
	buf := make([]byte, h.ChunkSize)
	var sent int64
	for sent < n {
		want := int64(len(buf))
		if remaining := n - sent; remaining < want {
			want = remaining
		}
		read, readErr := src.Read(buf[:want])
		if read > 0 {
			written, writeErr := dst.Write(buf[:read])
			sent += int64(written)
			if writeErr != nil {
				return sent
			}
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				logging.Ctx(ctx).Warn().Err(readErr).Msg("stream read failed")
			}
			return sent
		}
		select {
		case <-ctx.Done():
			return sent
		default:
		}
	}
	return sent
}

func etagFor(trackID string, info os.FileInfo) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d", trackID, info.Size(), info.ModTime().UnixNano())))
	return `"` + hex.EncodeToString(sum[:])[:16] + `"`
}

// writeAPIError writes a minimal JSON error envelope consistent with the
// rest of the HTTP surface, ahead of internal/api's shared response helper.
func writeAPIError(w http.ResponseWriter, err *apierr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    string(err.Kind),
			"message": err.Message,
		},
	})
}
