package schema

// UserSchema is the migration history for db/user.db: accounts,
// credentials, devices, tokens, and everything that synchronizes across a
// user's devices (likes, playlists, settings, the event log).
var UserSchema = []VersionedSchema{
	{
		Version: 1,
		Name:    "initial_user_tables",
		Tables: []TableDef{
			{
				Name: "users",
				Columns: []ColumnDef{
					{Name: "id", Type: TypeText, PrimaryKey: true},
					{Name: "handle", Type: TypeText, NotNull: true, Unique: true},
					{Name: "role", Type: TypeText, NotNull: true},
					{Name: "created_at", Type: TypeDateTime, NotNull: true},
				},
			},
			{
				Name: "credentials",
				Columns: []ColumnDef{
					{Name: "user_id", Type: TypeText, PrimaryKey: true,
						References: &ForeignKey{Table: "users", Column: "id", OnDelete: OnDeleteCascade}},
					{Name: "password_hash", Type: TypeText, NotNull: true, Default: "''"},
				},
			},
			{
				Name: "devices",
				Columns: []ColumnDef{
					{Name: "id", Type: TypeText, PrimaryKey: true},
					{Name: "uuid", Type: TypeText, NotNull: true, Unique: true},
					{Name: "user_id", Type: TypeText,
						References: &ForeignKey{Table: "users", Column: "id", OnDelete: OnDeleteSetNull}},
					{Name: "type", Type: TypeText, NotNull: true},
					{Name: "name", Type: TypeText, NotNull: true, Default: "''"},
					{Name: "os_info", Type: TypeText, NotNull: true, Default: "''"},
					{Name: "first_seen", Type: TypeDateTime, NotNull: true},
					{Name: "last_seen", Type: TypeDateTime, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_devices_user", Columns: []string{"user_id"}},
				},
			},
			{
				Name: "auth_token",
				Columns: []ColumnDef{
					{Name: "token", Type: TypeText, PrimaryKey: true},
					{Name: "user_id", Type: TypeText, NotNull: true},
					{Name: "device_id", Type: TypeText, NotNull: true},
					{Name: "created_at", Type: TypeDateTime, NotNull: true},
					{Name: "last_used_at", Type: TypeDateTime, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_auth_token_user", Columns: []string{"user_id"}},
					{Name: "idx_auth_token_device", Columns: []string{"device_id"}},
				},
			},
			{
				Name: "invite_token",
				Columns: []ColumnDef{
					{Name: "token", Type: TypeText, PrimaryKey: true},
					{Name: "user_id", Type: TypeText, NotNull: true},
					{Name: "created_by", Type: TypeText, NotNull: true},
					{Name: "created_at", Type: TypeDateTime, NotNull: true},
					{Name: "expires_at", Type: TypeDateTime, NotNull: true},
					{Name: "used_at", Type: TypeDateTime},
				},
			},
			{
				Name: "user_extra_permission",
				Columns: []ColumnDef{
					{Name: "user_id", Type: TypeText, NotNull: true},
					{Name: "permission", Type: TypeText, NotNull: true},
					{Name: "expires_at", Type: TypeDateTime},
				},
				Indexes: []IndexDef{
					{Name: "idx_user_extra_permission_user", Columns: []string{"user_id"}},
				},
			},
			{
				Name: "oidc_binding",
				Columns: []ColumnDef{
					{Name: "subject", Type: TypeText, PrimaryKey: true},
					{Name: "user_id", Type: TypeText, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_oidc_binding_user", Columns: []string{"user_id"}},
				},
			},
			{
				Name: "likes",
				Columns: []ColumnDef{
					{Name: "user_id", Type: TypeText, NotNull: true},
					{Name: "content_type", Type: TypeText, NotNull: true},
					{Name: "content_id", Type: TypeText, NotNull: true},
					{Name: "created_at", Type: TypeDateTime, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_likes_user_content", Columns: []string{"user_id", "content_type", "content_id"}, Unique: true},
				},
			},
			{
				Name: "playlists",
				Columns: []ColumnDef{
					{Name: "id", Type: TypeText, PrimaryKey: true},
					{Name: "user_id", Type: TypeText, NotNull: true},
					{Name: "name", Type: TypeText, NotNull: true},
					{Name: "track_ids", Type: TypeText, NotNull: true, Default: "'[]'"},
					{Name: "created_at", Type: TypeDateTime, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_playlists_user", Columns: []string{"user_id"}},
				},
			},
			{
				Name: "settings",
				Columns: []ColumnDef{
					{Name: "user_id", Type: TypeText, NotNull: true},
					{Name: "key", Type: TypeText, NotNull: true},
					{Name: "value", Type: TypeText, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_settings_user_key", Columns: []string{"user_id", "key"}, Unique: true},
				},
			},
			{
				Name: "listening_events",
				Columns: []ColumnDef{
					{Name: "user_id", Type: TypeText, NotNull: true},
					{Name: "track_id", Type: TypeText, NotNull: true},
					{Name: "started_at", Type: TypeDateTime, NotNull: true},
					{Name: "duration_ms", Type: TypeInteger, NotNull: true},
					{Name: "source", Type: TypeText, NotNull: true, Default: "''"},
				},
				Indexes: []IndexDef{
					{Name: "idx_listening_events_user", Columns: []string{"user_id", "started_at"}},
					{Name: "idx_listening_events_track", Columns: []string{"track_id"}},
				},
			},
			{
				Name: "user_events",
				Columns: []ColumnDef{
					{Name: "id", Type: TypeInteger, PrimaryKey: true, AutoIncr: true},
					{Name: "seq", Type: TypeInteger, NotNull: true},
					{Name: "user_id", Type: TypeText, NotNull: true},
					{Name: "event_type", Type: TypeText, NotNull: true},
					{Name: "payload", Type: TypeText, NotNull: true},
					{Name: "created_at", Type: TypeDateTime, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_user_events_user_seq", Columns: []string{"user_id", "seq"}, Unique: true},
					{Name: "idx_user_events_created", Columns: []string{"created_at"}},
				},
			},
		},
	},
}
