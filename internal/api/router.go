package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/pezzottify/catalog-server/internal/authz"
	mw "github.com/pezzottify/catalog-server/internal/middleware"
)

// NewRouter builds the full chi mux: the global middleware stack, then the
// six route groups spec'd for /v1 (auth, content, user, admin, sync, ws).
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(mw.CORS(h.Config.Security.CORSOrigins))
	if !h.Config.Security.RateLimitDisabled {
		r.Use(mw.RateLimit(h.Config.Security.RateLimitReqs, h.Config.Security.RateLimitWindow))
	}
	r.Use(mw.PrometheusMetrics)
	r.Use(mw.Compression)
	r.Use(mw.RequestID)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", h.mountAuth)
		r.Route("/content", h.mountContent)
		r.Route("/user", h.mountUser)
		r.Route("/admin", h.mountAdmin)
		r.Route("/sync", h.mountSync)
		r.Get("/ws", h.handleWebSocket)
	})

	return r
}

func (h *Handler) mountAuth(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Get("/challenge", h.handleChallengeIssue)
	r.Post("/challenge", h.handleChallengeRedeem)
	r.Post("/redeem-invite", h.handleRedeemInvite)

	r.Group(func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Get("/logout", h.handleLogout)
		r.Get("/session", h.handleSession)
	})
}

func (h *Handler) mountContent(r chi.Router) {
	r.Use(h.Authenticate)
	r.Use(h.requirePermission(authz.AccessCatalog))

	r.Get("/artist/{id}", h.handleGetArtist)
	r.Get("/artist/{id}/discography", h.handleArtistDiscography)
	r.Get("/album/{id}", h.handleGetAlbum)
	r.Get("/album/{id}/resolved", h.handleResolvedAlbum)
	r.Get("/track/{id}", h.handleGetTrack)
	r.Get("/track/{id}/resolved", h.handleResolvedTrack)
	r.Get("/image/{id}", h.handleGetImage)
	r.Get("/stream/{id}", h.handleStreamTrack)
	r.Get("/whatsnew", h.handleWhatsNew)
	r.Get("/popular", h.handlePopular)
	r.Post("/search", h.handleSearch)
}

func (h *Handler) mountUser(r chi.Router) {
	r.Use(h.Authenticate)

	r.Group(func(r chi.Router) {
		r.Use(h.requirePermission(authz.LikeContent))
		r.Get("/liked/{type}", h.handleListLiked)
		r.Put("/liked/{type}/{id}", h.handleLikeContent)
		r.Delete("/liked/{type}/{id}", h.handleUnlikeContent)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requirePermission(authz.OwnPlaylists))
		r.Get("/playlist", h.handleListPlaylists)
		r.Post("/playlist", h.handleCreatePlaylist)
		r.Get("/playlist/{id}", h.handleGetPlaylist)
		r.Put("/playlist/{id}", h.handleRenamePlaylist)
		r.Put("/playlist/{id}/tracks", h.handleSetPlaylistTracks)
		r.Delete("/playlist/{id}", h.handleDeletePlaylist)
	})

	r.Get("/settings", h.handleGetSettings)
	r.Put("/settings", h.handleSetSetting)

	r.Post("/listening", h.handleRecordListening)
	r.Get("/listening", h.handleListListening)
}

func (h *Handler) mountAdmin(r chi.Router) {
	r.Use(h.Authenticate)

	r.Group(func(r chi.Router) {
		r.Use(h.requirePermission(authz.ManagePermissions))
		r.Get("/users", h.handleAdminListUsers)
		r.Post("/users", h.handleAdminCreateUser)
		r.Delete("/users/{id}", h.handleAdminDeleteUser)
		r.Put("/users/{id}/role", h.handleAdminSetRole)
		r.Post("/users/{id}/permissions", h.handleAdminGrantPermission)
		r.Delete("/users/{id}/permissions", h.handleAdminRevokePermission)
		r.Post("/users/{id}/invite", h.handleAdminCreateInvite)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requirePermission(authz.ServerAdmin))
		r.Get("/jobs", h.handleListJobs)
		r.Post("/jobs/{id}", h.handleTriggerJob)
		r.Post("/reboot", h.handleAdminReboot)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requirePermission(authz.EditCatalog))
		r.Post("/artist", h.handleAdminCreateArtist)
		r.Put("/artist/{id}", h.handleAdminUpdateArtist)
		r.Delete("/artist/{id}", h.handleAdminDeleteArtist)
		r.Post("/album", h.handleAdminCreateAlbum)
		r.Put("/album/{id}", h.handleAdminUpdateAlbum)
		r.Delete("/album/{id}", h.handleAdminDeleteAlbum)
		r.Post("/track", h.handleAdminCreateTrack)
		r.Put("/track/{id}", h.handleAdminUpdateTrack)
		r.Delete("/track/{id}", h.handleAdminDeleteTrack)
		r.Put("/track/{id}/availability", h.handleAdminSetTrackAvailability)
		r.Post("/image", h.handleAdminCreateImage)
		r.Delete("/image/{id}", h.handleAdminDeleteImage)
		r.Get("/changelog", h.handleAdminChangelog)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requirePermission(authz.ViewAnalytics))
		r.Get("/bandwidth/{id}", h.handleAdminBandwidth)
		r.Get("/listening/{id}", h.handleAdminListening)
	})
}

func (h *Handler) mountSync(r chi.Router) {
	r.Use(h.Authenticate)
	r.Get("/state", h.handleSyncState)
	r.Get("/events", h.handleSyncEvents)
}
