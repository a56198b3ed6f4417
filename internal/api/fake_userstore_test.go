package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/sync"
	"github.com/pezzottify/catalog-server/internal/useraccount"
)

// fakeUserStore is a minimal, in-memory stand-in for UserStore. Only the
// fields tests actually populate are consulted; everything else returns a
// zero value or apierr.NotFound so handlers relying on unused methods fail
// loudly rather than silently succeeding.
type fakeUserStore struct {
	usersByHandle map[string]*useraccount.User
	usersByID     map[string]*useraccount.User
	credentials   map[string]*useraccount.Credential
	sessions      map[string]*useraccount.Session

	loginResult *useraccount.LoginResult
	loginErr    *apierr.Error
	logoutErr   error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		usersByHandle: map[string]*useraccount.User{},
		usersByID:     map[string]*useraccount.User{},
		credentials:   map[string]*useraccount.Credential{},
		sessions:      map[string]*useraccount.Session{},
	}
}

func (f *fakeUserStore) GetUserByHandle(ctx context.Context, handle string) (*useraccount.User, error) {
	u, ok := f.usersByHandle[handle]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (f *fakeUserStore) GetUser(ctx context.Context, id string) (*useraccount.User, error) {
	u, ok := f.usersByID[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (f *fakeUserStore) GetCredential(ctx context.Context, userID string) (*useraccount.Credential, error) {
	c, ok := f.credentials[userID]
	if !ok {
		return nil, apierr.NotFound("no credential for user")
	}
	return c, nil
}

func (f *fakeUserStore) Resolve(ctx context.Context, token string, now time.Time) (*useraccount.Session, *apierr.Error) {
	sess, ok := f.sessions[token]
	if !ok {
		return nil, apierr.Unauthorized("invalid or expired session")
	}
	return sess, nil
}

func (f *fakeUserStore) Login(ctx context.Context, req useraccount.LoginRequest, now time.Time) (*useraccount.LoginResult, *apierr.Error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeUserStore) Logout(ctx context.Context, token string) error {
	return f.logoutErr
}

func (f *fakeUserStore) CreateInviteToken(ctx context.Context, userID, createdBy string, ttl time.Duration, now time.Time) (*useraccount.InviteToken, error) {
	return nil, nil
}

func (f *fakeUserStore) RedeemInviteToken(ctx context.Context, token string, req useraccount.LoginRequest, now time.Time) (*useraccount.LoginResult, *apierr.Error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeUserStore) LikeContent(ctx context.Context, events sync.Store, userID string, contentType useraccount.LikedContentType, contentID string, now time.Time) *apierr.Error {
	return nil
}

func (f *fakeUserStore) UnlikeContent(ctx context.Context, events sync.Store, userID string, contentType useraccount.LikedContentType, contentID string) *apierr.Error {
	return nil
}

func (f *fakeUserStore) ListLiked(ctx context.Context, userID string, contentType useraccount.LikedContentType) ([]useraccount.LikedItem, error) {
	return nil, nil
}

func (f *fakeUserStore) CreatePlaylist(ctx context.Context, events sync.Store, userID, name string, now time.Time) (*useraccount.Playlist, *apierr.Error) {
	return nil, nil
}

func (f *fakeUserStore) RenamePlaylist(ctx context.Context, events sync.Store, userID, playlistID, name string, now time.Time) *apierr.Error {
	return nil
}

func (f *fakeUserStore) SetPlaylistTracks(ctx context.Context, events sync.Store, userID, playlistID string, trackIDs []string) *apierr.Error {
	return nil
}

func (f *fakeUserStore) DeletePlaylist(ctx context.Context, events sync.Store, userID, playlistID string) *apierr.Error {
	return nil
}

func (f *fakeUserStore) GetPlaylist(ctx context.Context, userID, playlistID string) (*useraccount.Playlist, error) {
	return nil, nil
}

func (f *fakeUserStore) ListPlaylists(ctx context.Context, userID string) ([]useraccount.Playlist, error) {
	return nil, nil
}

func (f *fakeUserStore) SetSetting(ctx context.Context, events sync.Store, userID, key string, value json.RawMessage) *apierr.Error {
	return nil
}

func (f *fakeUserStore) GetSetting(ctx context.Context, userID, key string) (json.RawMessage, error) {
	return nil, nil
}

func (f *fakeUserStore) ListSettings(ctx context.Context, userID string) (map[string]json.RawMessage, error) {
	return nil, nil
}

func (f *fakeUserStore) RecordListening(ctx context.Context, userID string, ev useraccount.ListeningEvent) *apierr.Error {
	return nil
}

func (f *fakeUserStore) ListListening(ctx context.Context, userID string, limit int) ([]useraccount.ListeningEvent, error) {
	return nil, nil
}

func (f *fakeUserStore) ListDevices(ctx context.Context, userID string) ([]useraccount.Device, error) {
	return nil, nil
}

func (f *fakeUserStore) CreateUser(ctx context.Context, handle, password string, role useraccount.Role, now time.Time) (*useraccount.User, *apierr.Error) {
	return nil, nil
}

func (f *fakeUserStore) ListUsers(ctx context.Context, now time.Time) ([]useraccount.User, error) {
	return nil, nil
}

func (f *fakeUserStore) DeleteUser(ctx context.Context, id string) *apierr.Error {
	return nil
}

func (f *fakeUserStore) SetRole(ctx context.Context, userID string, role useraccount.Role) *apierr.Error {
	return nil
}

func (f *fakeUserStore) GrantPermission(ctx context.Context, userID, permission string, expiresAt time.Time) *apierr.Error {
	return nil
}

func (f *fakeUserStore) RevokePermission(ctx context.Context, userID, permission string) *apierr.Error {
	return nil
}

var _ UserStore = (*fakeUserStore)(nil)
