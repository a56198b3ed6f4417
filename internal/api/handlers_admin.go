package api

import (
	"net/http"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/catalog"
	"github.com/pezzottify/catalog-server/internal/useraccount"
	"github.com/pezzottify/catalog-server/internal/validation"
)

// -- users -------------------------------------------------------------

func (h *Handler) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context(), time.Now())
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "list users", err))
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, r, verr.Error())
		return
	}

	user, apiErr := h.Users.CreateUser(r.Context(), req.Handle, req.Password, useraccount.Role(req.Role), time.Now())
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if apiErr := h.Users.DeleteUser(r.Context(), routeParam(r, "id")); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleAdminSetRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, r, verr.Error())
		return
	}
	if apiErr := h.Users.SetRole(r.Context(), routeParam(r, "id"), useraccount.Role(req.Role)); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleAdminGrantPermission(w http.ResponseWriter, r *http.Request) {
	var req grantPermissionRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, r, verr.Error())
		return
	}

	var expires time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			writeValidationError(w, r, "expires_at must be RFC3339")
			return
		}
		expires = parsed
	}

	if apiErr := h.Users.GrantPermission(r.Context(), routeParam(r, "id"), req.Permission, expires); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleAdminRevokePermission(w http.ResponseWriter, r *http.Request) {
	permission := r.URL.Query().Get("permission")
	if permission == "" {
		writeValidationError(w, r, "permission query parameter is required")
		return
	}
	if apiErr := h.Users.RevokePermission(r.Context(), routeParam(r, "id"), permission); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleAdminCreateInvite(w http.ResponseWriter, r *http.Request) {
	var req createInviteRequest
	if apiErr := decodeJSON(r, &req); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, r, verr.Error())
		return
	}

	actor, apiErr := currentUserID(r)
	if apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	invite, err := h.Users.CreateInviteToken(r.Context(), req.UserID, actor, time.Duration(req.TTLMins)*time.Minute, time.Now())
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "create invite", err))
		return
	}
	writeJSON(w, http.StatusOK, invite)
}

// -- jobs ----------------------------------------------------------------

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	runs, err := h.History.Recent(r.Context(), name, queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "list job history", err))
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) handleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := routeParam(r, "id")
	if err := h.Scheduler.Trigger(r.Context(), name); err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "trigger job", err))
		return
	}
	writeNoContent(w)
}

// -- catalog CRUD ----------------------------------------------------------

func (h *Handler) handleAdminCreateArtist(w http.ResponseWriter, r *http.Request) {
	var artist catalog.Artist
	if apiErr := decodeJSON(r, &artist); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if err := h.Catalog.InsertArtist(r.Context(), artist); err != nil {
		writeError(w, r, err)
		return
	}
	_ = h.Search.AddItem(r.Context(), artist.ID, catalog.ContentArtist, artist.Name)
	writeJSON(w, http.StatusOK, artist)
}

func (h *Handler) handleAdminUpdateArtist(w http.ResponseWriter, r *http.Request) {
	var artist catalog.Artist
	if apiErr := decodeJSON(r, &artist); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	artist.ID = routeParam(r, "id")
	if err := h.Catalog.UpdateArtist(r.Context(), artist); err != nil {
		writeError(w, r, err)
		return
	}
	_ = h.Search.UpdateItem(r.Context(), artist.ID, catalog.ContentArtist, artist.Name)
	writeNoContent(w)
}

func (h *Handler) handleAdminDeleteArtist(w http.ResponseWriter, r *http.Request) {
	id := routeParam(r, "id")
	if err := h.Catalog.DeleteArtist(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	_ = h.Search.RemoveItem(r.Context(), id, catalog.ContentArtist)
	writeNoContent(w)
}

func (h *Handler) handleAdminCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var album catalog.Album
	if apiErr := decodeJSON(r, &album); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if err := h.Catalog.InsertAlbum(r.Context(), album); err != nil {
		writeError(w, r, err)
		return
	}
	_ = h.Search.AddItem(r.Context(), album.ID, catalog.ContentAlbum, album.Title)
	writeJSON(w, http.StatusOK, album)
}

func (h *Handler) handleAdminUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	var album catalog.Album
	if apiErr := decodeJSON(r, &album); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	album.ID = routeParam(r, "id")
	if err := h.Catalog.UpdateAlbum(r.Context(), album); err != nil {
		writeError(w, r, err)
		return
	}
	_ = h.Search.UpdateItem(r.Context(), album.ID, catalog.ContentAlbum, album.Title)
	writeNoContent(w)
}

func (h *Handler) handleAdminDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id := routeParam(r, "id")
	if err := h.Catalog.DeleteAlbum(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	_ = h.Search.RemoveItem(r.Context(), id, catalog.ContentAlbum)
	writeNoContent(w)
}

func (h *Handler) handleAdminCreateTrack(w http.ResponseWriter, r *http.Request) {
	var track catalog.Track
	if apiErr := decodeJSON(r, &track); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if err := h.Catalog.InsertTrack(r.Context(), track); err != nil {
		writeError(w, r, err)
		return
	}
	_ = h.Search.AddItem(r.Context(), track.ID, catalog.ContentTrack, track.Title)
	writeJSON(w, http.StatusOK, track)
}

func (h *Handler) handleAdminUpdateTrack(w http.ResponseWriter, r *http.Request) {
	var track catalog.Track
	if apiErr := decodeJSON(r, &track); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	track.ID = routeParam(r, "id")
	if err := h.Catalog.UpdateTrack(r.Context(), track); err != nil {
		writeError(w, r, err)
		return
	}
	_ = h.Search.UpdateItem(r.Context(), track.ID, catalog.ContentTrack, track.Title)
	writeNoContent(w)
}

func (h *Handler) handleAdminDeleteTrack(w http.ResponseWriter, r *http.Request) {
	id := routeParam(r, "id")
	if err := h.Catalog.DeleteTrack(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	_ = h.Search.RemoveItem(r.Context(), id, catalog.ContentTrack)
	writeNoContent(w)
}

func (h *Handler) handleAdminSetTrackAvailability(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Availability string `json:"availability" validate:"required,oneof=available unavailable fetching fetch_error"`
	}
	if apiErr := decodeJSON(r, &body); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if verr := validation.ValidateStruct(&body); verr != nil {
		writeValidationError(w, r, verr.Error())
		return
	}
	if err := h.Catalog.SetTrackAvailability(r.Context(), routeParam(r, "id"), catalog.Availability(body.Availability)); err != nil {
		writeError(w, r, err)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleAdminCreateImage(w http.ResponseWriter, r *http.Request) {
	var img catalog.Image
	if apiErr := decodeJSON(r, &img); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}
	if err := h.Catalog.InsertImage(r.Context(), img); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func (h *Handler) handleAdminDeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteImage(r.Context(), routeParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeNoContent(w)
}

func (h *Handler) handleAdminChangelog(w http.ResponseWriter, r *http.Request) {
	batches, err := h.Catalog.WhatsNew(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

// -- analytics -------------------------------------------------------------

func (h *Handler) handleAdminBandwidth(w http.ResponseWriter, r *http.Request) {
	userID := routeParam(r, "id")
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	bytes, err := h.Bandwidth.DailyUsage(r.Context(), userID, date)
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "read bandwidth usage", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "date": date, "bytes": bytes})
}

func (h *Handler) handleAdminListening(w http.ResponseWriter, r *http.Request) {
	userID := routeParam(r, "id")
	events, err := h.Users.ListListening(r.Context(), userID, queryInt(r, "limit", 100))
	if err != nil {
		writeError(w, r, apierr.Wrap(apierr.KindInternal, "list listening history", err))
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// -- server control ---------------------------------------------------------

func (h *Handler) handleAdminReboot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reboot scheduled"})
	go func() {
		time.Sleep(500 * time.Millisecond)
		rebootRequested <- struct{}{}
	}()
}

// rebootRequested is observed by cmd/server's main loop to trigger a
// graceful shutdown-and-restart in process supervisors that restart on exit.
var rebootRequested = make(chan struct{}, 1)

// RebootRequested exposes rebootRequested for cmd/server to select on.
func RebootRequested() <-chan struct{} { return rebootRequested }
