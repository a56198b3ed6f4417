package catalog

import (
	"context"
	"time"
)

// Store is the catalog contract: CRUD plus the resolved/discography/
// whats-new/popular query surface.
//
// Implementations (sqliteStore, and the SearchAwareStore decorator) must all
// satisfy the same contract so decorators can be composed transparently at
// startup wiring.
type Store interface {
	GetArtist(ctx context.Context, id string) (*Artist, error)
	ListArtists(ctx context.Context) ([]Artist, error)
	InsertArtist(ctx context.Context, a Artist) error
	UpdateArtist(ctx context.Context, a Artist) error
	DeleteArtist(ctx context.Context, id string) error

	GetAlbum(ctx context.Context, id string) (*Album, error)
	ListAlbums(ctx context.Context) ([]Album, error)
	ResolvedAlbum(ctx context.Context, id string) (*ResolvedAlbum, error)
	InsertAlbum(ctx context.Context, a Album) error
	UpdateAlbum(ctx context.Context, a Album) error
	DeleteAlbum(ctx context.Context, id string) error

	GetTrack(ctx context.Context, id string) (*Track, error)
	ListTracks(ctx context.Context) ([]Track, error)
	ResolvedTrack(ctx context.Context, id string) (*ResolvedTrack, error)
	InsertTrack(ctx context.Context, t Track) error
	UpdateTrack(ctx context.Context, t Track) error
	DeleteTrack(ctx context.Context, id string) error
	SetTrackAvailability(ctx context.Context, id string, av Availability) error

	GetImage(ctx context.Context, id string) (*Image, error)
	InsertImage(ctx context.Context, img Image) error
	DeleteImage(ctx context.Context, id string) error

	SearchContent(ctx context.Context) ([]SearchContentRow, error)
	Discography(ctx context.Context, artistID string) ([]Album, error)
	WhatsNew(ctx context.Context, limit int) ([]WhatsNewBatch, error)
	Popular(ctx context.Context, window time.Duration, limit int) ([]PopularItem, error)

	// RecordPlay appends one listening event, consumed by Popular and by the
	// PopularContentJob's periodic popularity recompute.
	RecordPlay(ctx context.Context, id string, contentType ContentType) error
}
