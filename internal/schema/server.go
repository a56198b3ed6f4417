package schema

// ServerSchema is the migration history for db/server.db: bandwidth
// rollups, scheduled-job history, the popularity side-table the search
// engine scores against, and the download-audit log.
var ServerSchema = []VersionedSchema{
	{
		Version: 1,
		Name:    "initial_server_tables",
		Tables: []TableDef{
			{
				Name: "daily_bandwidth_usage",
				Columns: []ColumnDef{
					{Name: "user_id", Type: TypeText, PrimaryKey: true},
					{Name: "usage_date", Type: TypeText, PrimaryKey: true},
					{Name: "bytes_served", Type: TypeInteger, NotNull: true, Default: "0"},
				},
			},
			{
				Name: "job_history",
				Columns: []ColumnDef{
					{Name: "id", Type: TypeInteger, PrimaryKey: true, AutoIncr: true},
					{Name: "job_name", Type: TypeText, NotNull: true},
					{Name: "trigger", Type: TypeText, NotNull: true, Default: "'scheduled'"},
					{Name: "started_at", Type: TypeDateTime, NotNull: true},
					{Name: "finished_at", Type: TypeDateTime},
					{Name: "status", Type: TypeText, NotNull: true, Default: "'running'"},
					{Name: "output", Type: TypeText, NotNull: true, Default: "''"},
				},
				Indexes: []IndexDef{
					{Name: "idx_job_history_job_started", Columns: []string{"job_name", "started_at"}},
				},
			},
			{
				Name: "item_popularity",
				Columns: []ColumnDef{
					{Name: "content_id", Type: TypeText, NotNull: true},
					{Name: "content_type", Type: TypeText, NotNull: true},
					{Name: "play_count", Type: TypeInteger, NotNull: true, Default: "0"},
					{Name: "normalized_score", Type: TypeReal, NotNull: true, Default: "0"},
					{Name: "updated_at", Type: TypeDateTime, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_item_popularity_content", Columns: []string{"content_id", "content_type"}, Unique: true},
				},
			},
			{
				Name: "download_audit",
				Columns: []ColumnDef{
					{Name: "id", Type: TypeInteger, PrimaryKey: true, AutoIncr: true},
					{Name: "user_id", Type: TypeText, NotNull: true},
					{Name: "content_id", Type: TypeText, NotNull: true},
					{Name: "content_type", Type: TypeText, NotNull: true},
					{Name: "requested_at", Type: TypeDateTime, NotNull: true},
				},
				Indexes: []IndexDef{
					{Name: "idx_download_audit_requested", Columns: []string{"requested_at"}},
				},
			},
		},
	},
}
