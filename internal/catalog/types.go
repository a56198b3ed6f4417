// Package catalog is the relational store of artists, albums, tracks and
// images: validated mutations, N:M artist<->album and artist<->track
// relationships, and a decorator layer that keeps a search index in sync.
package catalog

import "time"

// ArtistRole is one of the roles an artist can hold on an album or track.
type ArtistRole string

const (
	RolePrimary   ArtistRole = "primary"
	RolePerformer ArtistRole = "performer"
	RoleComposer  ArtistRole = "composer"
	RoleFeatured  ArtistRole = "featured"
	RoleRemixer   ArtistRole = "remixer"
)

// ArtistCredit is one (artist_id, role) pair in an album's or track's
// ordered credit list.
type ArtistCredit struct {
	ArtistID string     `json:"artist_id"`
	Role     ArtistRole `json:"role"`
}

// Availability describes whether a track's audio is currently playable.
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
	AvailabilityFetching    Availability = "fetching"
	AvailabilityFetchError  Availability = "fetch_error"
)

// Artist is a catalog artist row.
type Artist struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	SortName        string    `json:"sort_name,omitempty"`
	Genres          []string  `json:"genres"`
	ActivityStart   int       `json:"activity_start,omitempty"` // year, 0 if unknown
	ActivityEnd     int       `json:"activity_end,omitempty"`
	RelatedArtistIDs []string `json:"related_artists"`
	ImageIDs        []string  `json:"image_ids"`
	CreatedAt       time.Time `json:"created_at"`
}

// Album is a catalog album row.
type Album struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	VersionTitle string         `json:"version_title,omitempty"`
	ReleaseDate  int64          `json:"release_date"` // unix seconds
	Label        string         `json:"label,omitempty"`
	Genres       []string       `json:"genres"`
	CoverImageIDs []string      `json:"cover_image_ids"`
	Artists      []ArtistCredit `json:"artists"` // ordered, primary artists first
	ChangelogBatch string       `json:"changelog_batch,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Track is a catalog track row.
type Track struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	VersionTitle  string         `json:"version_title,omitempty"`
	AlbumID       string         `json:"album_id"`
	Disc          int            `json:"disc"`
	TrackNumber   int            `json:"track_number"`
	DurationMs    int64          `json:"duration_ms"`
	AudioURI      string         `json:"audio_uri,omitempty"`
	Tags          []string       `json:"tags"`
	Languages     []string       `json:"languages"`
	Artists       []ArtistCredit `json:"artists"`
	Availability  Availability   `json:"availability"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Image is a catalog image row; its file lives at
// <media_path>/images/<id>.<ext> derived from MIMEType.
type Image struct {
	ID       string `json:"id"`
	MIMEType string `json:"mime_type"`
}

// ArtistSummary is the one-hop-joined artist view embedded by Resolved*.
type ArtistSummary struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Role ArtistRole `json:"role"`
}

// ResolvedAlbum is an Album with its artist credits inlined.
type ResolvedAlbum struct {
	Album
	ResolvedArtists []ArtistSummary `json:"resolved_artists"`
}

// ResolvedTrack is a Track with its artist credits inlined.
type ResolvedTrack struct {
	Track
	ResolvedArtists []ArtistSummary `json:"resolved_artists"`
}

// ContentType identifies which catalog entity kind a search/popularity
// result refers to.
type ContentType string

const (
	ContentArtist ContentType = "artist"
	ContentAlbum  ContentType = "album"
	ContentTrack  ContentType = "track"
)

// SearchContentRow is one row of the view search engines index at startup
// and on every catalog mutation.
type SearchContentRow struct {
	ID   string
	Type ContentType
	Name string
}

// PopularItem is one row of a Popular() result.
type PopularItem struct {
	ID         string      `json:"id"`
	Type       ContentType `json:"type"`
	PlayCount  int64       `json:"play_count"`
}

// WhatsNewBatch groups albums added together in one admin changelog batch.
type WhatsNewBatch struct {
	BatchID string  `json:"batch_id"`
	Albums  []Album `json:"albums"`
}
