package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/pezzottify/catalog-server/internal/catalog"
)

// catalogScanner is the slice of catalog.Store the integrity detectors and
// the search reconciler need.
type catalogScanner interface {
	ListArtists(ctx context.Context) ([]catalog.Artist, error)
	ListAlbums(ctx context.Context) ([]catalog.Album, error)
	ListTracks(ctx context.Context) ([]catalog.Track, error)
	GetImage(ctx context.Context, id string) (*catalog.Image, error)
	SearchContent(ctx context.Context) ([]catalog.SearchContentRow, error)
}

// indexer is the slice of search.Engine the search reconciler needs.
type indexer interface {
	AddItem(ctx context.Context, id string, contentType catalog.ContentType, name string) error
}

// Detector scans the catalog for one class of integrity problem and returns
// a human-readable finding per problem row. A detector that finds nothing
// returns a nil slice, not an error.
type Detector func(ctx context.Context, store catalogScanner) ([]string, error)

// detectorRegistry is the set of checks IntegrityWatchdogJob runs each pass,
// keyed by name so a run's output can attribute findings to their check.
var detectorRegistry = map[string]Detector{
	"orphan_image_references": detectOrphanImageReferences,
	"missing_audio":           detectMissingAudio,
	"invalid_availability":    detectInvalidAvailability,
}

// fetchStaleness is how long a track may sit in fetching or fetch_error
// before detectInvalidAvailability flags it as stuck rather than
// in-progress.
const fetchStaleness = 6 * time.Hour

// detectOrphanImageReferences finds artist/album image IDs that point at no
// row in the images table: the reference survived a deletion that should
// have cleaned it up.
func detectOrphanImageReferences(ctx context.Context, store catalogScanner) ([]string, error) {
	var findings []string

	artists, err := store.ListArtists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	for _, a := range artists {
		for _, imgID := range a.ImageIDs {
			if _, err := store.GetImage(ctx, imgID); err != nil {
				findings = append(findings, fmt.Sprintf("artist %s references missing image %s", a.ID, imgID))
			}
		}
	}

	albums, err := store.ListAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	for _, al := range albums {
		for _, imgID := range al.CoverImageIDs {
			if _, err := store.GetImage(ctx, imgID); err != nil {
				findings = append(findings, fmt.Sprintf("album %s references missing image %s", al.ID, imgID))
			}
		}
	}

	return findings, nil
}

// detectMissingAudio finds tracks marked available with no audio URI to
// actually stream.
func detectMissingAudio(ctx context.Context, store catalogScanner) ([]string, error) {
	tracks, err := store.ListTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	var findings []string
	for _, t := range tracks {
		if t.Availability == catalog.AvailabilityAvailable && t.AudioURI == "" {
			findings = append(findings, fmt.Sprintf("track %s is available with no audio_uri", t.ID))
		}
	}
	return findings, nil
}

// detectInvalidAvailability finds tracks whose availability state is
// inconsistent: an unrecognized value, or stuck in fetching/fetch_error
// long enough that the download that should have resolved it has clearly
// given up.
func detectInvalidAvailability(ctx context.Context, store catalogScanner) ([]string, error) {
	tracks, err := store.ListTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	cutoff := time.Now().Add(-fetchStaleness)
	var findings []string
	for _, t := range tracks {
		switch t.Availability {
		case catalog.AvailabilityAvailable, catalog.AvailabilityUnavailable,
			catalog.AvailabilityFetching, catalog.AvailabilityFetchError:
		default:
			findings = append(findings, fmt.Sprintf("track %s has unrecognized availability %q", t.ID, t.Availability))
			continue
		}
		if (t.Availability == catalog.AvailabilityFetching || t.Availability == catalog.AvailabilityFetchError) &&
			t.CreatedAt.Before(cutoff) {
			findings = append(findings, fmt.Sprintf("track %s stuck in %s since %s", t.ID, t.Availability, t.CreatedAt))
		}
	}
	return findings, nil
}

// NewIntegrityWatchdogJob runs every registered Detector against store, then
// reconciles the search index by re-submitting the catalog's current
// search_content view: AddItem is idempotent, so this heals any item the
// index missed without needing a separate diff against the index's own
// contents.
func NewIntegrityWatchdogJob(store catalogScanner, engine indexer) Job {
	return Job{
		Name:     "integrity_watchdog",
		Interval: 24 * time.Hour,
		Timeout:  15 * time.Minute,
		Run: func(ctx context.Context) (string, error) {
			var findings int
			for name, detect := range detectorRegistry {
				issues, err := detect(ctx, store)
				if err != nil {
					return "", fmt.Errorf("detector %s: %w", name, err)
				}
				findings += len(issues)
			}

			rows, err := store.SearchContent(ctx)
			if err != nil {
				return "", fmt.Errorf("load search content: %w", err)
			}
			for _, row := range rows {
				if err := engine.AddItem(ctx, row.ID, row.Type, row.Name); err != nil {
					return "", fmt.Errorf("reindex %s %s: %w", row.Type, row.ID, err)
				}
			}

			return fmt.Sprintf("%d findings, %d items reconciled", findings, len(rows)), nil
		},
	}
}
