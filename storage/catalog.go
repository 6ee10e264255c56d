package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/remasterhq/remaster/modules/catalog"
	"github.com/remasterhq/remaster/pkg/pg"
)

// CatalogStore implements catalog.Storage over a pgx pool. Key, tuning
// and loops live in JSONB columns; pgx maps them through the struct
// JSON tags directly.
type CatalogStore struct {
	pool *pgxpool.Pool
}

func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

const remasterColumns = `id, name, artist_id, video_id, duration, key, tuning, loops, likes, creator_id, created_at, updated_at`

func scanRemaster(row pgx.Row) (*catalog.Remaster, error) {
	var rm catalog.Remaster
	err := row.Scan(&rm.ID, &rm.Name, &rm.ArtistID, &rm.VideoID, &rm.Duration,
		&rm.Key, &rm.Tuning, &rm.Loops, &rm.Likes, &rm.CreatorID, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, catalog.ErrRemasterNotFound
		}
		return nil, err
	}
	return &rm, nil
}

func (s *CatalogStore) ListRemasters(ctx context.Context) ([]catalog.Remaster, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+remasterColumns+` FROM remasters ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRemasters(rows, false)
}

func (s *CatalogStore) GetRemaster(ctx context.Context, id int64) (*catalog.Remaster, error) {
	return scanRemaster(s.pool.QueryRow(ctx,
		`SELECT `+remasterColumns+` FROM remasters WHERE id = $1`, id))
}

func (s *CatalogStore) GetRemasterWithArtist(ctx context.Context, id int64) (*catalog.Remaster, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT r.id, r.name, r.artist_id, r.video_id, r.duration, r.key, r.tuning,
		       r.loops, r.likes, r.creator_id, r.created_at, r.updated_at,
		       a.id, a.name, a.created_at, a.updated_at
		FROM remasters r
		JOIN artists a ON a.id = r.artist_id
		WHERE r.id = $1`, id)

	rm, err := scanRemasterWithArtist(row)
	if err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *CatalogStore) ListRemastersByCreator(ctx context.Context, creatorID int64) ([]catalog.Remaster, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.name, r.artist_id, r.video_id, r.duration, r.key, r.tuning,
		       r.loops, r.likes, r.creator_id, r.created_at, r.updated_at,
		       a.id, a.name, a.created_at, a.updated_at
		FROM remasters r
		JOIN artists a ON a.id = r.artist_id
		WHERE r.creator_id = $1
		ORDER BY r.id`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRemasters(rows, true)
}

func (s *CatalogStore) CreateRemaster(ctx context.Context, params catalog.CreateRemasterParams) (*catalog.Remaster, error) {
	return scanRemaster(s.pool.QueryRow(ctx, `
		INSERT INTO remasters (name, artist_id, video_id, duration, key, tuning, loops, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, '[]'::jsonb, $7)
		RETURNING `+remasterColumns,
		params.Name, params.ArtistID, params.VideoID, params.Duration,
		params.Key, params.Tuning, params.CreatorID))
}

func (s *CatalogStore) GetArtistByName(ctx context.Context, name string) (*catalog.Artist, error) {
	var a catalog.Artist
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at
		FROM artists WHERE lower(name) = lower($1)`, name).
		Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, catalog.ErrArtistNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *CatalogStore) CreateArtist(ctx context.Context, name string) (*catalog.Artist, error) {
	var a catalog.Artist
	err := s.pool.QueryRow(ctx, `
		INSERT INTO artists (name) VALUES ($1)
		RETURNING id, name, created_at, updated_at`, name).
		Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		// A concurrent insert may win the unique race on the name;
		// fall back to reading the winner.
		if pg.IsDuplicateKeyError(err) {
			return s.GetArtistByName(ctx, name)
		}
		return nil, err
	}
	return &a, nil
}

func collectRemasters(rows pgx.Rows, withArtist bool) ([]catalog.Remaster, error) {
	out := []catalog.Remaster{}
	for rows.Next() {
		var (
			rm  *catalog.Remaster
			err error
		)
		if withArtist {
			rm, err = scanRemasterWithArtist(rows)
		} else {
			rm, err = scanRemaster(rows)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	return out, rows.Err()
}

func scanRemasterWithArtist(row pgx.Row) (*catalog.Remaster, error) {
	var (
		rm catalog.Remaster
		a  catalog.Artist
	)
	err := row.Scan(&rm.ID, &rm.Name, &rm.ArtistID, &rm.VideoID, &rm.Duration,
		&rm.Key, &rm.Tuning, &rm.Loops, &rm.Likes, &rm.CreatorID, &rm.CreatedAt, &rm.UpdatedAt,
		&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, catalog.ErrRemasterNotFound
		}
		return nil, err
	}
	rm.Artist = &a
	return &rm, nil
}
