package catalog

import (
	"context"
	"time"
)

// Key is a musical key annotation stored as JSONB on a remaster.
type Key struct {
	ID     int    `json:"id"`
	Note   string `json:"note"`
	Colour string `json:"colour"`
}

// Tuning describes the instrument tuning a remaster was transcribed in.
type Tuning struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Notes []string `json:"notes"`
}

// Barre is a barre annotation inside a chord diagram.
type Barre struct {
	FromString int `json:"fromString"`
	ToString   int `json:"toString"`
	Fret       int `json:"fret"`
}

// Chord is a fingered chord diagram attached to a loop.
type Chord struct {
	Title    string  `json:"title,omitempty"`
	Fingers  [][]int `json:"fingers"`
	Barres   []Barre `json:"barres"`
	Position int     `json:"position"`
}

// Loop is an annotated section of the source video: a named time range
// with its key and an optional chord or tab.
type Loop struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Key   Key     `json:"key"`
	Type  string  `json:"type"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Chord *Chord  `json:"chord,omitempty"`
	Tab   string  `json:"tab,omitempty"`
}

// Artist groups remasters by performer. Names are unique
// case-insensitively.
type Artist struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remaster is a community transcription of a song video.
type Remaster struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ArtistID  int64     `json:"artist_id"`
	Artist    *Artist   `json:"artist,omitempty"`
	VideoID   string    `json:"video_id"`
	Duration  float64   `json:"duration"`
	Key       Key       `json:"key"`
	Tuning    Tuning    `json:"tuning"`
	Loops     []Loop    `json:"loops"`
	Likes     int       `json:"likes"`
	CreatorID int64     `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRemasterParams is the storage-level insert payload.
type CreateRemasterParams struct {
	Name      string
	ArtistID  int64
	VideoID   string
	Duration  float64
	Key       Key
	Tuning    Tuning
	CreatorID int64
}

// Storage is the persistence boundary of the catalog.
type Storage interface {
	ListRemasters(ctx context.Context) ([]Remaster, error)
	GetRemaster(ctx context.Context, id int64) (*Remaster, error)
	// GetRemasterWithArtist also resolves the artist relation.
	GetRemasterWithArtist(ctx context.Context, id int64) (*Remaster, error)
	ListRemastersByCreator(ctx context.Context, creatorID int64) ([]Remaster, error)
	CreateRemaster(ctx context.Context, params CreateRemasterParams) (*Remaster, error)

	GetArtistByName(ctx context.Context, name string) (*Artist, error)
	CreateArtist(ctx context.Context, name string) (*Artist, error)
}
