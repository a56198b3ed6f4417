// Package useraccount implements users, credentials, devices, auth tokens
// and invite tokens: login, device upsert with ring-buffer eviction, opaque
// token issuance, and OIDC subject binding. All of it lives in user.db,
// shared with internal/sync's event log through one *sql.DB and one write
// mutex.
package useraccount
