// Package audit records one row per audio download in server.db's
// download_audit table, for compliance and abuse review rather than
// per-user listening history (that's internal/useraccount's concern).
// Writes go through an async buffer so a slow disk never blocks a stream
// response; internal/scheduler's AuditLogCleanupJob prunes old rows
// through PruneDownloadAudit.
package audit
