// Package schema defines the versioned table layouts for the three SQLite
// databases (catalog, user, server) and the migrator that brings a
// database from whatever version it's at up to the latest one declared
// here. See Apply, CatalogSchema, UserSchema, and ServerSchema.
package schema
