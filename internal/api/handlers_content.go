package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/authz"
	"github.com/pezzottify/catalog-server/internal/catalog"
)

func (h *Handler) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	artist, err := h.Catalog.GetArtist(r.Context(), routeParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if artist == nil {
		writeError(w, r, apierr.NotFound("artist not found"))
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

func (h *Handler) handleArtistDiscography(w http.ResponseWriter, r *http.Request) {
	albums, err := h.Catalog.Discography(r.Context(), routeParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

func (h *Handler) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := h.Catalog.GetAlbum(r.Context(), routeParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if album == nil {
		writeError(w, r, apierr.NotFound("album not found"))
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (h *Handler) handleResolvedAlbum(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.Catalog.ResolvedAlbum(r.Context(), routeParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if resolved == nil {
		writeError(w, r, apierr.NotFound("album not found"))
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

func (h *Handler) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	track, err := h.Catalog.GetTrack(r.Context(), routeParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if track == nil {
		writeError(w, r, apierr.NotFound("track not found"))
		return
	}
	writeJSON(w, http.StatusOK, track)
}

func (h *Handler) handleResolvedTrack(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.Catalog.ResolvedTrack(r.Context(), routeParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if resolved == nil {
		writeError(w, r, apierr.NotFound("track not found"))
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

func (h *Handler) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id := routeParam(r, "id")
	img, err := h.Catalog.GetImage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if img == nil {
		writeError(w, r, apierr.NotFound("image not found"))
		return
	}

	path := filepath.Join(h.Config.MediaPath, "images", id+extensionForMIME(img.MIMEType))
	f, err := os.Open(path)
	if err != nil {
		writeError(w, r, apierr.NotFound("image file missing"))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(h.Config.ContentCacheAgeSec))
	http.ServeContent(w, r, id, time.Time{}, f)
}

func (h *Handler) handleStreamTrack(w http.ResponseWriter, r *http.Request) {
	sess := authz.SessionFromContext(r.Context())
	userID := ""
	if sess != nil {
		userID = sess.UserID
	}
	h.Streaming.ServeTrack(w, r, routeParam(r, "id"), userID)
}

func (h *Handler) handleWhatsNew(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	batches, err := h.Catalog.WhatsNew(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

func (h *Handler) handlePopular(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	windowDays := queryInt(r, "window_days", 30)
	items, err := h.Catalog.Popular(r.Context(), time.Duration(windowDays)*24*time.Hour, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 25
	}
	filter := map[catalog.ContentType]bool{}
	for _, t := range req.Types {
		filter[catalog.ContentType(t)] = true
	}

	results, err := h.Search.Search(r.Context(), req.Query, limit, filter)
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "search", err))
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func extensionForMIME(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
