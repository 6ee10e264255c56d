package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Service implements the catalog operations over Storage. Lookups of
// records that do not exist, or that belong to another creator, come
// back as nil rather than errors, matching the public query contract.
type Service struct {
	store Storage
	log   *slog.Logger
}

func NewService(store Storage, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// ListRemasters returns every remaster without artist relations.
func (s *Service) ListRemasters(ctx context.Context) ([]Remaster, error) {
	return s.store.ListRemasters(ctx)
}

// GetRemaster returns one remaster or nil when absent.
func (s *Service) GetRemaster(ctx context.Context, id int64) (*Remaster, error) {
	remaster, err := s.store.GetRemaster(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRemasterNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return remaster, nil
}

// UserRemaster returns one remaster with its artist, but only to its
// creator; anyone else sees it as absent.
func (s *Service) UserRemaster(ctx context.Context, creatorID, id int64) (*Remaster, error) {
	remaster, err := s.store.GetRemasterWithArtist(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRemasterNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if remaster.CreatorID != creatorID {
		return nil, nil
	}
	return remaster, nil
}

// UserRemasters lists the remasters the creator owns, artists included.
func (s *Service) UserRemasters(ctx context.Context, creatorID int64) ([]Remaster, error) {
	return s.store.ListRemastersByCreator(ctx, creatorID)
}

// CreateRemasterInput is the payload for CreateRemaster.
type CreateRemasterInput struct {
	Name     string  `json:"name"`
	Artist   string  `json:"artist"`
	VideoID  string  `json:"video_id"`
	Duration float64 `json:"duration"`
	Key      Key     `json:"key"`
	Tuning   Tuning  `json:"tuning"`
}

// CreateRemaster inserts a remaster for the creator, finding or
// creating the artist by name first.
func (s *Service) CreateRemaster(ctx context.Context, creatorID int64, input CreateRemasterInput) (*Remaster, error) {
	name := strings.TrimSpace(input.Artist)

	artist, err := s.store.GetArtistByName(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrArtistNotFound) {
			return nil, err
		}
		artist, err = s.store.CreateArtist(ctx, name)
		if err != nil {
			return nil, err
		}
		s.log.InfoContext(ctx, "created artist", slog.String("name", name), slog.Int64("artist_id", artist.ID))
	}

	return s.store.CreateRemaster(ctx, CreateRemasterParams{
		Name:      input.Name,
		ArtistID:  artist.ID,
		VideoID:   input.VideoID,
		Duration:  input.Duration,
		Key:       input.Key,
		Tuning:    input.Tuning,
		CreatorID: creatorID,
	})
}
