package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pezzottify/catalog-server/internal/catalog"
)

type fakeCatalogScanner struct {
	artists []catalog.Artist
	albums  []catalog.Album
	tracks  []catalog.Track
	images  map[string]bool
	content []catalog.SearchContentRow
}

func (f *fakeCatalogScanner) ListArtists(ctx context.Context) ([]catalog.Artist, error) { return f.artists, nil }
func (f *fakeCatalogScanner) ListAlbums(ctx context.Context) ([]catalog.Album, error)    { return f.albums, nil }
func (f *fakeCatalogScanner) ListTracks(ctx context.Context) ([]catalog.Track, error)    { return f.tracks, nil }
func (f *fakeCatalogScanner) SearchContent(ctx context.Context) ([]catalog.SearchContentRow, error) {
	return f.content, nil
}
func (f *fakeCatalogScanner) GetImage(ctx context.Context, id string) (*catalog.Image, error) {
	if f.images[id] {
		return &catalog.Image{ID: id}, nil
	}
	return nil, errors.New("not found")
}

type fakeIndexer struct {
	indexed int
}

func (f *fakeIndexer) AddItem(ctx context.Context, id string, contentType catalog.ContentType, name string) error {
	f.indexed++
	return nil
}

func TestDetectOrphanImageReferences(t *testing.T) {
	scanner := &fakeCatalogScanner{
		artists: []catalog.Artist{{ID: "a1", ImageIDs: []string{"img-1", "img-missing"}}},
		images:  map[string]bool{"img-1": true},
	}
	findings, err := detectOrphanImageReferences(context.Background(), scanner)
	if err != nil {
		t.Fatalf("detectOrphanImageReferences: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %v, want 1", findings)
	}
}

func TestDetectMissingAudio(t *testing.T) {
	scanner := &fakeCatalogScanner{
		tracks: []catalog.Track{
			{ID: "t1", Availability: catalog.AvailabilityAvailable, AudioURI: "song.mp3"},
			{ID: "t2", Availability: catalog.AvailabilityAvailable, AudioURI: ""},
			{ID: "t3", Availability: catalog.AvailabilityUnavailable, AudioURI: ""},
		},
	}
	findings, err := detectMissingAudio(context.Background(), scanner)
	if err != nil {
		t.Fatalf("detectMissingAudio: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %v, want 1", findings)
	}
}

func TestDetectInvalidAvailability(t *testing.T) {
	scanner := &fakeCatalogScanner{
		tracks: []catalog.Track{
			{ID: "t1", Availability: catalog.AvailabilityAvailable, CreatedAt: time.Now()},
			{ID: "t2", Availability: catalog.AvailabilityFetching, CreatedAt: time.Now()},
			{ID: "t3", Availability: catalog.AvailabilityFetching, CreatedAt: time.Now().Add(-48 * time.Hour)},
			{ID: "t4", Availability: catalog.AvailabilityFetchError, CreatedAt: time.Now().Add(-48 * time.Hour)},
			{ID: "t5", Availability: "bogus", CreatedAt: time.Now()},
		},
	}
	findings, err := detectInvalidAvailability(context.Background(), scanner)
	if err != nil {
		t.Fatalf("detectInvalidAvailability: %v", err)
	}
	if len(findings) != 3 {
		t.Fatalf("findings = %v, want 3", findings)
	}
}

func TestIntegrityWatchdogJobReindexesSearchContent(t *testing.T) {
	scanner := &fakeCatalogScanner{
		images:  map[string]bool{},
		content: []catalog.SearchContentRow{{ID: "t1", Type: catalog.ContentTrack, Name: "Song"}},
	}
	idx := &fakeIndexer{}

	job := NewIntegrityWatchdogJob(scanner, idx)
	output, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if idx.indexed != 1 {
		t.Fatalf("indexed = %d, want 1", idx.indexed)
	}
	if output == "" {
		t.Fatal("expected non-empty output summary")
	}
}
