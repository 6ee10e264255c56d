// Package redis wraps connection setup and health checking for the
// go-redis client. The server uses Redis as the TTL-bearing store for
// one-time codes.
package redis
