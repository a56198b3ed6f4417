package api

import (
	"net/http"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/authz"
	"github.com/pezzottify/catalog-server/internal/useraccount"
	"github.com/pezzottify/catalog-server/internal/validation"
)

func currentUserID(r *http.Request) (string, *apierr.Error) {
	sess := authz.SessionFromContext(r.Context())
	if sess == nil {
		return "", apierr.Unauthorized("no authenticated session")
	}
	return sess.UserID, nil
}

func (h *Handler) handleLikeContent(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	contentType := useraccount.LikedContentType(0)
	if err := parseLikedType(routeParam(r, "type"), &contentType); err != nil {
		writeValidationError(w, r, err.Error())
		return
	}

	if apiErr := h.Users.LikeContent(r.Context(), h.Events, userID, contentType, routeParam(r, "id"), time.Now()); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleUnlikeContent(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	contentType := useraccount.LikedContentType(0)
	if err := parseLikedType(routeParam(r, "type"), &contentType); err != nil {
		writeValidationError(w, r, err.Error())
		return
	}

	if apiErr := h.Users.UnlikeContent(r.Context(), h.Events, userID, contentType, routeParam(r, "id")); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleListLiked(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	contentType := useraccount.LikedContentUnknown
	_ = parseLikedType(routeParam(r, "type"), &contentType)

	items, err := h.Users.ListLiked(r.Context(), userID, contentType)
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "list liked content", err))
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func parseLikedType(raw string, out *useraccount.LikedContentType) error {
	if err := out.UnmarshalJSON([]byte(`"` + raw + `"`)); err != nil {
		return err
	}
	if *out == useraccount.LikedContentUnknown {
		return apierr.ValidationFailure("unrecognized content type")
	}
	return nil
}

func (h *Handler) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	var req createPlaylistRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, r, verr.Error())
		return
	}

	playlist, apiErr := h.Users.CreatePlaylist(r.Context(), h.Events, userID, req.Name, time.Now())
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *Handler) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	playlists, err := h.Users.ListPlaylists(r.Context(), userID)
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "list playlists", err))
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (h *Handler) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	playlist, err := h.Users.GetPlaylist(r.Context(), userID, routeParam(r, "id"))
	if err != nil {
		writeError(w, r, apierr.NotFound("playlist not found"))
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *Handler) handleRenamePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	var req renamePlaylistRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, r, verr.Error())
		return
	}

	if apiErr := h.Users.RenamePlaylist(r.Context(), h.Events, userID, routeParam(r, "id"), req.Name, time.Now()); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleSetPlaylistTracks(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	var req setTracksRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, r, verr.Error())
		return
	}

	if apiErr := h.Users.SetPlaylistTracks(r.Context(), h.Events, userID, routeParam(r, "id"), req.TrackIDs); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if apiErr := h.Users.DeletePlaylist(r.Context(), h.Events, userID, routeParam(r, "id")); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	settings, err := h.Users.ListSettings(r.Context(), userID)
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "list settings", err))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		writeValidationError(w, r, "key query parameter is required")
		return
	}
	var req setSettingRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	if apiErr := h.Users.SetSetting(r.Context(), h.Events, userID, key, req.Value); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleRecordListening(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	var req recordListeningRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, r, verr.Error())
		return
	}

	ev := useraccount.ListeningEvent{
		TrackID:    req.TrackID,
		StartedAt:  time.Now(),
		DurationMs: req.DurationMs,
		Source:     req.Source,
	}
	if apiErr := h.Users.RecordListening(r.Context(), userID, ev); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleListListening(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	events, err := h.Users.ListListening(r.Context(), userID, queryInt(r, "limit", 100))
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "list listening history", err))
		return
	}
	writeJSON(w, http.StatusOK, events)
}
