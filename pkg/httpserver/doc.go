// Package httpserver wraps net/http with graceful shutdown, option and
// environment based configuration, and probe handlers.
package httpserver
