// Package logger provides a thin factory over log/slog with
// environment-driven configuration and attribute helpers shared by the
// rest of the server.
package logger
