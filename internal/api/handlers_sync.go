package api

import (
	"net/http"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/authz"
	"github.com/pezzottify/catalog-server/internal/sync"
	"github.com/pezzottify/catalog-server/internal/useraccount"
)

// syncState is the full-snapshot body GET /sync/state returns so a device
// can rebuild its local cache without replaying the entire event log.
type syncState struct {
	Seq         int64                      `json:"seq"`
	Likes       []useraccount.LikedItem    `json:"likes"`
	Settings    map[string]any             `json:"settings"`
	Playlists   []useraccount.Playlist     `json:"playlists"`
	Permissions []string                   `json:"permissions"`
}

func (h *Handler) handleSyncState(w http.ResponseWriter, r *http.Request) {
	sess := authz.SessionFromContext(r.Context())
	if sess == nil {
		writeError(w, r, apierr.Unauthorized("no authenticated session"))
		return
	}

	seq, err := h.Events.CurrentSeq(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "resolve current seq", err))
		return
	}
	likes, err := h.Users.ListLiked(r.Context(), sess.UserID, useraccount.LikedContentUnknown)
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "list liked content", err))
		return
	}
	settingsRaw, err := h.Users.ListSettings(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "list settings", err))
		return
	}
	playlists, err := h.Users.ListPlaylists(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "list playlists", err))
		return
	}

	settings := make(map[string]any, len(settingsRaw))
	for k, v := range settingsRaw {
		settings[k] = v
	}

	writeJSON(w, http.StatusOK, syncState{
		Seq:         seq,
		Likes:       likes,
		Settings:    settings,
		Playlists:   playlists,
		Permissions: sess.Permissions,
	})
}

func (h *Handler) handleSyncEvents(w http.ResponseWriter, r *http.Request) {
	sess := authz.SessionFromContext(r.Context())
	if sess == nil {
		writeError(w, r, apierr.Unauthorized("no authenticated session"))
		return
	}

	since := int64(queryInt(r, "since", 0))
	limit := queryInt(r, "limit", sync.DefaultPageLimit)

	result, apiErr := sync.CatchUp(r.Context(), h.Events, sess.UserID, since, limit)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
