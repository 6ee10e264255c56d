// Package storage provides the PostgreSQL implementations of the
// persistence contracts declared by the domain modules.
package storage
