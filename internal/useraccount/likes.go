package useraccount

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/sync"
)

// LikedContentType is the closed set of things a user can like. Unknown is
// a forward-compat sentinel: accepted on UnmarshalJSON for content types
// added after a client ships, never produced by MarshalJSON.
type LikedContentType int

const (
	LikedContentUnknown LikedContentType = iota
	LikedContentTrack
	LikedContentAlbum
	LikedContentArtist
	LikedContentPlaylist
)

var likedContentTypeNames = map[LikedContentType]string{
	LikedContentTrack:    "track",
	LikedContentAlbum:    "album",
	LikedContentArtist:   "artist",
	LikedContentPlaylist: "playlist",
}

var likedContentTypeValues = map[string]LikedContentType{
	"track":    LikedContentTrack,
	"album":    LikedContentAlbum,
	"artist":   LikedContentArtist,
	"playlist": LikedContentPlaylist,
}

func (t LikedContentType) String() string {
	if s, ok := likedContentTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

func (t LikedContentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *LikedContentType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if v, ok := likedContentTypeValues[s]; ok {
		*t = v
		return nil
	}
	*t = LikedContentUnknown
	return nil
}

type likedContentEvent struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
}

// LikeContent records a (user_id, content_type, content_id) like and
// appends a content_liked event in the same transaction. Liking an
// already-liked item is idempotent: no duplicate row, no duplicate event.
func (s *sqliteStore) LikeContent(ctx context.Context, events sync.Store, userID string, contentType LikedContentType, contentID string, now time.Time) *apierr.Error {
	if contentType == LikedContentUnknown {
		return apierr.ValidationFailure("unrecognized content_type")
	}

	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM likes WHERE user_id = ? AND content_type = ? AND content_id = ?`,
			userID, contentType.String(), contentID).Scan(&exists)
		if err == nil {
			return nil
		}
		if err != sql.ErrNoRows {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO likes (user_id, content_type, content_id, created_at) VALUES (?, ?, ?, ?)`,
			userID, contentType.String(), contentID, now); err != nil {
			return err
		}
		_, err = events.Append(ctx, tx, userID, "content_liked", likedContentEvent{
			ContentType: contentType.String(),
			ContentID:   contentID,
		})
		return err
	})
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "like content", err)
	}
	return nil
}

// UnlikeContent removes a like and appends a content_unliked event.
// Unliking something never liked is a no-op: no event is appended.
func (s *sqliteStore) UnlikeContent(ctx context.Context, events sync.Store, userID string, contentType LikedContentType, contentID string) *apierr.Error {
	if contentType == LikedContentUnknown {
		return apierr.ValidationFailure("unrecognized content_type")
	}

	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM likes WHERE user_id = ? AND content_type = ? AND content_id = ?`,
			userID, contentType.String(), contentID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		_, err = events.Append(ctx, tx, userID, "content_unliked", likedContentEvent{
			ContentType: contentType.String(),
			ContentID:   contentID,
		})
		return err
	})
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "unlike content", err)
	}
	return nil
}

// LikedItem is one row of a user's liked content, as returned by
// ListLiked and embedded in a full sync snapshot.
type LikedItem struct {
	ContentType string    `json:"content_type"`
	ContentID   string    `json:"content_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *sqliteStore) ListLiked(ctx context.Context, userID string, contentType LikedContentType) ([]LikedItem, error) {
	query := `SELECT content_type, content_id, created_at FROM likes WHERE user_id = ?`
	args := []any{userID}
	if contentType != LikedContentUnknown {
		query += ` AND content_type = ?`
		args = append(args, contentType.String())
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LikedItem
	for rows.Next() {
		var item LikedItem
		if err := rows.Scan(&item.ContentType, &item.ContentID, &item.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// IsLiked reports whether userID has liked the given content.
func (s *sqliteStore) IsLiked(ctx context.Context, userID string, contentType LikedContentType, contentID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM likes WHERE user_id = ? AND content_type = ? AND content_id = ?`,
		userID, contentType.String(), contentID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
