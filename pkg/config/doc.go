// Package config loads environment-based configuration into tagged
// structs using github.com/caarlos0/env, with optional .env support via
// github.com/joho/godotenv for local development.
//
// Every component of the server declares its own Config struct next to
// the code that consumes it; main wires them together with MustLoad so
// that a missing required variable aborts startup instead of surfacing
// as a per-request failure.
package config
