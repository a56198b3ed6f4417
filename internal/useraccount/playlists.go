package useraccount

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/sync"
)

// Playlist is one user-owned ordered track list.
type Playlist struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	TrackIDs  []string  `json:"track_ids"`
	CreatedAt time.Time `json:"created_at"`
}

type playlistCreatedEvent struct {
	PlaylistID string `json:"playlist_id"`
	Name       string `json:"name"`
}

type playlistTracksUpdatedEvent struct {
	PlaylistID string   `json:"playlist_id"`
	TrackIDs   []string `json:"track_ids"`
}

type playlistDeletedEvent struct {
	PlaylistID string `json:"playlist_id"`
}

// CreatePlaylist makes a new, empty playlist for userID and appends a
// playlist_created event.
func (s *sqliteStore) CreatePlaylist(ctx context.Context, events sync.Store, userID, name string, now time.Time) (*Playlist, *apierr.Error) {
	if name == "" {
		return nil, apierr.ValidationFailure("playlist name is required")
	}

	p := Playlist{ID: uuid.NewString(), UserID: userID, Name: name, TrackIDs: []string{}, CreatedAt: now}
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		tracksJSON, err := json.Marshal(p.TrackIDs)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO playlists (id, user_id, name, track_ids, created_at) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.UserID, p.Name, tracksJSON, p.CreatedAt); err != nil {
			return err
		}
		_, err = events.Append(ctx, tx, userID, "playlist_created", playlistCreatedEvent{PlaylistID: p.ID, Name: p.Name})
		return err
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "create playlist", err)
	}
	return &p, nil
}

// RenamePlaylist changes a playlist's name and appends a playlist_renamed
// event. Returns a not_found error if playlistID isn't owned by userID.
func (s *sqliteStore) RenamePlaylist(ctx context.Context, events sync.Store, userID, playlistID, name string, now time.Time) *apierr.Error {
	if name == "" {
		return apierr.ValidationFailure("playlist name is required")
	}

	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE playlists SET name = ? WHERE id = ? AND user_id = ?`, name, playlistID, userID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apierr.NotFound("playlist not found")
		}
		_, err = events.Append(ctx, tx, userID, "playlist_renamed", playlistCreatedEvent{PlaylistID: playlistID, Name: name})
		return err
	})
	return apiErrFrom(err, "rename playlist")
}

// SetPlaylistTracks replaces a playlist's ordered track list wholesale and
// appends a playlist_tracks_updated event.
func (s *sqliteStore) SetPlaylistTracks(ctx context.Context, events sync.Store, userID, playlistID string, trackIDs []string) *apierr.Error {
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		tracksJSON, err := json.Marshal(trackIDs)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE playlists SET track_ids = ? WHERE id = ? AND user_id = ?`, tracksJSON, playlistID, userID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apierr.NotFound("playlist not found")
		}
		_, err = events.Append(ctx, tx, userID, "playlist_tracks_updated", playlistTracksUpdatedEvent{
			PlaylistID: playlistID, TrackIDs: trackIDs,
		})
		return err
	})
	return apiErrFrom(err, "update playlist tracks")
}

// DeletePlaylist removes a playlist and appends a playlist_deleted event.
func (s *sqliteStore) DeletePlaylist(ctx context.Context, events sync.Store, userID, playlistID string) *apierr.Error {
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ? AND user_id = ?`, playlistID, userID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apierr.NotFound("playlist not found")
		}
		_, err = events.Append(ctx, tx, userID, "playlist_deleted", playlistDeletedEvent{PlaylistID: playlistID})
		return err
	})
	return apiErrFrom(err, "delete playlist")
}

func (s *sqliteStore) GetPlaylist(ctx context.Context, userID, playlistID string) (*Playlist, error) {
	var p Playlist
	var tracksJSON []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, track_ids, created_at FROM playlists WHERE id = ? AND user_id = ?`,
		playlistID, userID).Scan(&p.ID, &p.UserID, &p.Name, &tracksJSON, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tracksJSON, &p.TrackIDs); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *sqliteStore) ListPlaylists(ctx context.Context, userID string) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, track_ids, created_at FROM playlists WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Playlist
	for rows.Next() {
		var p Playlist
		var tracksJSON []byte
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &tracksJSON, &p.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(tracksJSON, &p.TrackIDs); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// apiErrFrom classifies a withWriteTx error: an *apierr.Error produced
// inside the transaction is returned as-is, anything else is internal.
func apiErrFrom(err error, action string) *apierr.Error {
	if err == nil {
		return nil
	}
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return apierr.Wrap(apierr.KindInternal, action, err)
}
