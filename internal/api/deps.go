package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/authz"
	"github.com/pezzottify/catalog-server/internal/bandwidth"
	"github.com/pezzottify/catalog-server/internal/catalog"
	"github.com/pezzottify/catalog-server/internal/config"
	"github.com/pezzottify/catalog-server/internal/scheduler"
	"github.com/pezzottify/catalog-server/internal/search"
	"github.com/pezzottify/catalog-server/internal/streaming"
	"github.com/pezzottify/catalog-server/internal/sync"
	"github.com/pezzottify/catalog-server/internal/useraccount"
	"github.com/pezzottify/catalog-server/internal/wsbroker"
)

// UserStore is the slice of internal/useraccount's sqliteStore this
// package calls through. It is declared here, not there, because
// useraccount.New returns an unexported concrete type: callers outside
// the package can only interact with it through an interface shaped to
// their own needs.
type UserStore interface {
	GetUserByHandle(ctx context.Context, handle string) (*useraccount.User, error)
	GetUser(ctx context.Context, id string) (*useraccount.User, error)
	GetCredential(ctx context.Context, userID string) (*useraccount.Credential, error)
	Resolve(ctx context.Context, token string, now time.Time) (*useraccount.Session, *apierr.Error)
	Login(ctx context.Context, req useraccount.LoginRequest, now time.Time) (*useraccount.LoginResult, *apierr.Error)
	Logout(ctx context.Context, token string) error
	CreateInviteToken(ctx context.Context, userID, createdBy string, ttl time.Duration, now time.Time) (*useraccount.InviteToken, error)
	RedeemInviteToken(ctx context.Context, token string, req useraccount.LoginRequest, now time.Time) (*useraccount.LoginResult, *apierr.Error)

	LikeContent(ctx context.Context, events sync.Store, userID string, contentType useraccount.LikedContentType, contentID string, now time.Time) *apierr.Error
	UnlikeContent(ctx context.Context, events sync.Store, userID string, contentType useraccount.LikedContentType, contentID string) *apierr.Error
	ListLiked(ctx context.Context, userID string, contentType useraccount.LikedContentType) ([]useraccount.LikedItem, error)

	CreatePlaylist(ctx context.Context, events sync.Store, userID, name string, now time.Time) (*useraccount.Playlist, *apierr.Error)
	RenamePlaylist(ctx context.Context, events sync.Store, userID, playlistID, name string, now time.Time) *apierr.Error
	SetPlaylistTracks(ctx context.Context, events sync.Store, userID, playlistID string, trackIDs []string) *apierr.Error
	DeletePlaylist(ctx context.Context, events sync.Store, userID, playlistID string) *apierr.Error
	GetPlaylist(ctx context.Context, userID, playlistID string) (*useraccount.Playlist, error)
	ListPlaylists(ctx context.Context, userID string) ([]useraccount.Playlist, error)

	SetSetting(ctx context.Context, events sync.Store, userID, key string, value json.RawMessage) *apierr.Error
	GetSetting(ctx context.Context, userID, key string) (json.RawMessage, error)
	ListSettings(ctx context.Context, userID string) (map[string]json.RawMessage, error)

	RecordListening(ctx context.Context, userID string, ev useraccount.ListeningEvent) *apierr.Error
	ListListening(ctx context.Context, userID string, limit int) ([]useraccount.ListeningEvent, error)

	ListDevices(ctx context.Context, userID string) ([]useraccount.Device, error)

	CreateUser(ctx context.Context, handle, password string, role useraccount.Role, now time.Time) (*useraccount.User, *apierr.Error)
	ListUsers(ctx context.Context, now time.Time) ([]useraccount.User, error)
	DeleteUser(ctx context.Context, id string) *apierr.Error
	SetRole(ctx context.Context, userID string, role useraccount.Role) *apierr.Error
	GrantPermission(ctx context.Context, userID, permission string, expiresAt time.Time) *apierr.Error
	RevokePermission(ctx context.Context, userID, permission string) *apierr.Error
}

// Handler bundles every dependency the route handlers call into. It is
// built once at startup by cmd/server and handed to NewRouter.
type Handler struct {
	Catalog   catalog.Store
	Users     UserStore
	Events    sync.Store
	Search    search.Engine
	Streaming *streaming.Handler
	Broker    *wsbroker.Broker
	Scheduler *scheduler.Scheduler
	History   *scheduler.History
	Enforcer  *authz.Enforcer
	AuthzMW   *authz.Middleware
	Config    *config.Config
	Bandwidth *bandwidth.Tracker
}

func NewHandler(
	catalogStore catalog.Store,
	users UserStore,
	events sync.Store,
	searchEngine search.Engine,
	streamingHandler *streaming.Handler,
	broker *wsbroker.Broker,
	sched *scheduler.Scheduler,
	history *scheduler.History,
	enforcer *authz.Enforcer,
	cfg *config.Config,
	tracker *bandwidth.Tracker,
) *Handler {
	return &Handler{
		Catalog:   catalogStore,
		Users:     users,
		Events:    events,
		Search:    searchEngine,
		Streaming: streamingHandler,
		Broker:    broker,
		Scheduler: sched,
		History:   history,
		Enforcer:  enforcer,
		AuthzMW:   authz.NewMiddleware(enforcer),
		Config:    cfg,
		Bandwidth: tracker,
	}
}
