// Package catalog holds the remaster records themselves: song remasters
// with their key, tuning and loop annotations, grouped under artists.
// Public listing and lookup are open; creator-scoped queries and
// creation require a session.
package catalog
