package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage is an in-memory Storage for the package tests.
type memStorage struct {
	mu             sync.Mutex
	nextRemasterID int64
	nextArtistID   int64
	remasters      map[int64]*Remaster
	artists        map[int64]*Artist
}

func newMemStorage() *memStorage {
	return &memStorage{
		nextRemasterID: 1,
		nextArtistID:   1,
		remasters:      make(map[int64]*Remaster),
		artists:        make(map[int64]*Artist),
	}
}

func (s *memStorage) ListRemasters(ctx context.Context) ([]Remaster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Remaster, 0, len(s.remasters))
	for _, rm := range s.remasters {
		out = append(out, *rm)
	}
	return out, nil
}

func (s *memStorage) GetRemaster(ctx context.Context, id int64) (*Remaster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.remasters[id]
	if !ok {
		return nil, ErrRemasterNotFound
	}
	c := *rm
	return &c, nil
}

func (s *memStorage) GetRemasterWithArtist(ctx context.Context, id int64) (*Remaster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.remasters[id]
	if !ok {
		return nil, ErrRemasterNotFound
	}
	c := *rm
	if artist, ok := s.artists[rm.ArtistID]; ok {
		a := *artist
		c.Artist = &a
	}
	return &c, nil
}

func (s *memStorage) ListRemastersByCreator(ctx context.Context, creatorID int64) ([]Remaster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Remaster
	for _, rm := range s.remasters {
		if rm.CreatorID == creatorID {
			c := *rm
			if artist, ok := s.artists[rm.ArtistID]; ok {
				a := *artist
				c.Artist = &a
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStorage) CreateRemaster(ctx context.Context, params CreateRemasterParams) (*Remaster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	rm := &Remaster{
		ID:        s.nextRemasterID,
		Name:      params.Name,
		ArtistID:  params.ArtistID,
		VideoID:   params.VideoID,
		Duration:  params.Duration,
		Key:       params.Key,
		Tuning:    params.Tuning,
		Loops:     []Loop{},
		CreatorID: params.CreatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextRemasterID++
	s.remasters[rm.ID] = rm
	c := *rm
	return &c, nil
}

func (s *memStorage) GetArtistByName(ctx context.Context, name string) (*Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.artists {
		if strings.EqualFold(a.Name, name) {
			c := *a
			return &c, nil
		}
	}
	return nil, ErrArtistNotFound
}

func (s *memStorage) CreateArtist(ctx context.Context, name string) (*Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	a := &Artist{ID: s.nextArtistID, Name: name, CreatedAt: now, UpdatedAt: now}
	s.nextArtistID++
	s.artists[a.ID] = a
	c := *a
	return &c, nil
}

func newTestService() (*Service, *memStorage) {
	store := newMemStorage()
	return NewService(store, slog.New(slog.DiscardHandler)), store
}

func testInput(artist string) CreateRemasterInput {
	return CreateRemasterInput{
		Name:     "Riviera Paradise",
		Artist:   artist,
		VideoID:  "fjh2J2Evpvs",
		Duration: 529,
		Key:      Key{ID: 4, Note: "E", Colour: "#ff0000"},
		Tuning:   Tuning{ID: 1, Name: "Standard", Notes: []string{"E", "A", "D", "G", "B", "E"}},
	}
}

func TestServiceCreateRemaster(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates the artist when absent", func(t *testing.T) {
		service, store := newTestService()

		rm, err := service.CreateRemaster(ctx, 7, testInput("Stevie Ray Vaughan"))
		require.NoError(t, err)
		require.NotNil(t, rm)

		artist, err := store.GetArtistByName(ctx, "Stevie Ray Vaughan")
		require.NoError(t, err)
		assert.Equal(t, artist.ID, rm.ArtistID)
		assert.Equal(t, int64(7), rm.CreatorID)
		assert.Equal(t, "E", rm.Key.Note)
		assert.Empty(t, rm.Loops)
	})

	t.Run("reuses an existing artist case-insensitively", func(t *testing.T) {
		service, _ := newTestService()

		first, err := service.CreateRemaster(ctx, 7, testInput("Stevie Ray Vaughan"))
		require.NoError(t, err)
		second, err := service.CreateRemaster(ctx, 7, testInput("stevie ray vaughan"))
		require.NoError(t, err)

		assert.Equal(t, first.ArtistID, second.ArtistID)
	})
}

func TestServiceQueries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("get of a missing remaster is nil, not an error", func(t *testing.T) {
		service, _ := newTestService()
		rm, err := service.GetRemaster(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, rm)
	})

	t.Run("creator scoping", func(t *testing.T) {
		service, _ := newTestService()

		mine, err := service.CreateRemaster(ctx, 7, testInput("Stevie Ray Vaughan"))
		require.NoError(t, err)
		_, err = service.CreateRemaster(ctx, 8, testInput("Jimi Hendrix"))
		require.NoError(t, err)

		// The creator sees their remaster with the artist resolved.
		got, err := service.UserRemaster(ctx, 7, mine.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.NotNil(t, got.Artist)
		assert.Equal(t, "Stevie Ray Vaughan", got.Artist.Name)

		// Another creator sees it as absent.
		other, err := service.UserRemaster(ctx, 8, mine.ID)
		require.NoError(t, err)
		assert.Nil(t, other)

		list, err := service.UserRemasters(ctx, 7)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, mine.ID, list[0].ID)
	})

	t.Run("public listing sees everything", func(t *testing.T) {
		service, _ := newTestService()

		_, err := service.CreateRemaster(ctx, 7, testInput("Stevie Ray Vaughan"))
		require.NoError(t, err)
		_, err = service.CreateRemaster(ctx, 8, testInput("Jimi Hendrix"))
		require.NoError(t, err)

		list, err := service.ListRemasters(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}
