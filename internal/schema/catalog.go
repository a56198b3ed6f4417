package schema

// CatalogSchema is the migration history for db/catalog.db: artists,
// albums, tracks, images, and the join tables between them.
var CatalogSchema = []VersionedSchema{
	{
		Version: 1,
		Name:    "initial_catalog_tables",
		Tables: []TableDef{
			{
				Name: "artists",
				Columns: []ColumnDef{
					{Name: "id", Type: TypeText, PrimaryKey: true},
					{Name: "name", Type: TypeText, NotNull: true},
					{Name: "sort_name", Type: TypeText},
					{Name: "genres", Type: TypeText, NotNull: true, Default: "'[]'"},
					{Name: "activity_start", Type: TypeInteger},
					{Name: "activity_end", Type: TypeInteger},
					{Name: "related_artists", Type: TypeText, NotNull: true, Default: "'[]'"},
					{Name: "image_ids", Type: TypeText, NotNull: true, Default: "'[]'"},
					{Name: "created_at", Type: TypeDateTime, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_artists_name", Columns: []string{"name"}},
				},
			},
			{
				Name: "images",
				Columns: []ColumnDef{
					{Name: "id", Type: TypeText, PrimaryKey: true},
					{Name: "mime_type", Type: TypeText, NotNull: true},
				},
			},
			{
				Name: "albums",
				Columns: []ColumnDef{
					{Name: "id", Type: TypeText, PrimaryKey: true},
					{Name: "title", Type: TypeText, NotNull: true},
					{Name: "version_title", Type: TypeText},
					{Name: "release_date", Type: TypeInteger},
					{Name: "label", Type: TypeText},
					{Name: "genres", Type: TypeText, NotNull: true, Default: "'[]'"},
					{Name: "cover_image_ids", Type: TypeText, NotNull: true, Default: "'[]'"},
					{Name: "changelog_batch", Type: TypeText},
					{Name: "created_at", Type: TypeDateTime, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_albums_title", Columns: []string{"title"}},
				},
			},
			{
				Name: "album_artists",
				Columns: []ColumnDef{
					{Name: "album_id", Type: TypeText, NotNull: true},
					{Name: "artist_id", Type: TypeText, NotNull: true},
					{Name: "role", Type: TypeText, NotNull: true},
					{Name: "position", Type: TypeInteger, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_album_artists_album", Columns: []string{"album_id"}},
					{Name: "idx_album_artists_artist", Columns: []string{"artist_id"}},
				},
			},
			{
				Name: "tracks",
				Columns: []ColumnDef{
					{Name: "id", Type: TypeText, PrimaryKey: true},
					{Name: "title", Type: TypeText, NotNull: true},
					{Name: "version_title", Type: TypeText},
					{Name: "album_id", Type: TypeText, NotNull: true},
					{Name: "disc", Type: TypeInteger, NotNull: true, Default: "1"},
					{Name: "track_number", Type: TypeInteger, NotNull: true},
					{Name: "duration_ms", Type: TypeInteger, NotNull: true},
					{Name: "audio_uri", Type: TypeText},
					{Name: "tags", Type: TypeText, NotNull: true, Default: "'[]'"},
					{Name: "languages", Type: TypeText, NotNull: true, Default: "'[]'"},
					{Name: "availability", Type: TypeText, NotNull: true},
					{Name: "created_at", Type: TypeDateTime, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_tracks_album", Columns: []string{"album_id"}},
				},
			},
			{
				Name: "track_artists",
				Columns: []ColumnDef{
					{Name: "track_id", Type: TypeText, NotNull: true},
					{Name: "artist_id", Type: TypeText, NotNull: true},
					{Name: "role", Type: TypeText, NotNull: true},
					{Name: "position", Type: TypeInteger, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_track_artists_track", Columns: []string{"track_id"}},
					{Name: "idx_track_artists_artist", Columns: []string{"artist_id"}},
				},
			},
			{
				Name: "play_events",
				Columns: []ColumnDef{
					{Name: "content_id", Type: TypeText, NotNull: true},
					{Name: "content_type", Type: TypeText, NotNull: true},
					{Name: "played_at", Type: TypeDateTime, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_play_events_content", Columns: []string{"content_id", "content_type"}},
				},
			},
		},
	},
}
