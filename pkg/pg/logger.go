package pg

import "context"

// logger is the subset of slog.Logger this package needs, kept as an
// interface so tests can pass a recording fake.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
