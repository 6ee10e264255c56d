package catalog

import "errors"

var (
	ErrRemasterNotFound = errors.New("remaster not found")
	ErrArtistNotFound   = errors.New("artist not found")
)
