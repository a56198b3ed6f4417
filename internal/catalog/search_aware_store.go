package catalog

import (
	"context"

	"github.com/pezzottify/catalog-server/internal/logging"
)

// SearchIndexer is the subset of a search engine's contract the catalog
// needs to keep an index in sync with mutations. internal/search's engines
// satisfy this without the catalog package importing internal/search.
type SearchIndexer interface {
	IndexContent(ctx context.Context, row SearchContentRow) error
	RemoveContent(ctx context.Context, id string, contentType ContentType) error
}

// SearchAwareStore decorates a Store, pushing every successful mutation to a
// SearchIndexer. A search-sync failure is logged and swallowed: the catalog
// mutation already committed and must not be rolled back for an indexing
// problem.
type SearchAwareStore struct {
	Store
	Index SearchIndexer
}

// NewSearchAwareStore wraps store so every catalog mutation also updates
// index.
func NewSearchAwareStore(store Store, index SearchIndexer) *SearchAwareStore {
	return &SearchAwareStore{Store: store, Index: index}
}

func (s *SearchAwareStore) syncIndex(ctx context.Context, row SearchContentRow) {
	if err := s.Index.IndexContent(ctx, row); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("content_id", row.ID).Str("content_type", string(row.Type)).
			Msg("search index sync failed")
	}
}

func (s *SearchAwareStore) syncRemove(ctx context.Context, id string, contentType ContentType) {
	if err := s.Index.RemoveContent(ctx, id, contentType); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("content_id", id).Str("content_type", string(contentType)).
			Msg("search index removal failed")
	}
}

func (s *SearchAwareStore) InsertArtist(ctx context.Context, a Artist) error {
	if err := s.Store.InsertArtist(ctx, a); err != nil {
		return err
	}
	s.syncIndex(ctx, SearchContentRow{ID: a.ID, Type: ContentArtist, Name: a.Name})
	return nil
}

func (s *SearchAwareStore) UpdateArtist(ctx context.Context, a Artist) error {
	if err := s.Store.UpdateArtist(ctx, a); err != nil {
		return err
	}
	s.syncIndex(ctx, SearchContentRow{ID: a.ID, Type: ContentArtist, Name: a.Name})
	return nil
}

func (s *SearchAwareStore) DeleteArtist(ctx context.Context, id string) error {
	if err := s.Store.DeleteArtist(ctx, id); err != nil {
		return err
	}
	s.syncRemove(ctx, id, ContentArtist)
	return nil
}

func (s *SearchAwareStore) InsertAlbum(ctx context.Context, a Album) error {
	if err := s.Store.InsertAlbum(ctx, a); err != nil {
		return err
	}
	s.syncIndex(ctx, SearchContentRow{ID: a.ID, Type: ContentAlbum, Name: a.Title})
	return nil
}

func (s *SearchAwareStore) UpdateAlbum(ctx context.Context, a Album) error {
	if err := s.Store.UpdateAlbum(ctx, a); err != nil {
		return err
	}
	s.syncIndex(ctx, SearchContentRow{ID: a.ID, Type: ContentAlbum, Name: a.Title})
	return nil
}

func (s *SearchAwareStore) DeleteAlbum(ctx context.Context, id string) error {
	if err := s.Store.DeleteAlbum(ctx, id); err != nil {
		return err
	}
	s.syncRemove(ctx, id, ContentAlbum)
	return nil
}

func (s *SearchAwareStore) InsertTrack(ctx context.Context, t Track) error {
	if err := s.Store.InsertTrack(ctx, t); err != nil {
		return err
	}
	s.syncIndex(ctx, SearchContentRow{ID: t.ID, Type: ContentTrack, Name: t.Title})
	return nil
}

func (s *SearchAwareStore) UpdateTrack(ctx context.Context, t Track) error {
	if err := s.Store.UpdateTrack(ctx, t); err != nil {
		return err
	}
	s.syncIndex(ctx, SearchContentRow{ID: t.ID, Type: ContentTrack, Name: t.Title})
	return nil
}

func (s *SearchAwareStore) DeleteTrack(ctx context.Context, id string) error {
	if err := s.Store.DeleteTrack(ctx, id); err != nil {
		return err
	}
	s.syncRemove(ctx, id, ContentTrack)
	return nil
}
