// Package pg provides PostgreSQL bootstrap helpers over the pgx/v5
// driver: pooled connection setup with retry, goose-based schema
// migrations, health checking and error classification helpers used by
// the storage layer to translate constraint violations into domain
// errors.
package pg
