/*
Package main is the entry point for the catalog server.

The server exposes a self-hosted music catalog over HTTP: browsing and
search against three SQLite databases (catalog, user, server), range-request
audio streaming with per-user bandwidth accounting, multi-device sync over a
WebSocket fan-out, and a small set of background jobs (popularity scoring,
integrity scanning, event and audit pruning).

# Architecture

	RootSupervisor ("catalog-server")
	├── messaging-layer
	│   └── job scheduler (popularity, integrity, pruning)
	└── api-layer
	    └── HTTP server

Startup order:

 1. Configuration: koanf, layered (defaults -> config file -> environment)
 2. Logging: zerolog, JSON or console
 3. Schema migration against db/catalog.db, db/user.db, db/server.db
 4. Stores: catalog, useraccount, sync event log, search engine, bandwidth
    tracker, audit logger
 5. Authorization: casbin enforcer and role policy
 6. Scheduler: job registration
 7. HTTP handler and router
 8. Supervisor tree, then the HTTP listener

# Configuration

Environment variables are prefixed CATALOG_; the rest of the name is
lower-cased and every underscore becomes a dot, so CATALOG_PORT sets port
and CATALOG_SEARCH_ENGINE sets search.engine. Keys whose own names contain
an underscore (db_dir, security.rate_limit_reqs) cannot be set from the
environment. See internal/config.

# Signal handling

SIGINT and SIGTERM trigger graceful shutdown: the HTTP listener stops
accepting new connections, in-flight requests get a bounded timeout to
finish, then the supervisor tree stops and the three SQLite databases
close. POST /v1/admin/reboot triggers the same shutdown.

# Exit codes

	0  clean shutdown
	1  startup failure (bad config, schema migration failure, unreachable db)
	2  fatal runtime panic recovered at main
*/
package main
