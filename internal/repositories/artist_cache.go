package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/setlistify/internal/models"
)

// ArtistCacheRepository persists artist search results keyed by normalized query.
type ArtistCacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewArtistCacheRepository creates a new [ArtistCacheRepository] with the given database connection
func NewArtistCacheRepository(db *sql.DB) *ArtistCacheRepository {
	return &ArtistCacheRepository{db: db, now: time.Now}
}

// NormalizeQuery folds case and whitespace so equivalent searches share an entry.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// Get returns the cached results for query when they are younger than ttl.
func (r *ArtistCacheRepository) Get(ctx context.Context, query string, ttl time.Duration) ([]models.Artist, bool, error) {
	var (
		payload   string
		createdAt time.Time
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT payload, created_at FROM artist_search_cache WHERE query = ?`,
		NormalizeQuery(query),
	).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query artist cache: %w", err)
	}

	if ttl > 0 && r.now().Sub(createdAt) > ttl {
		return nil, false, nil
	}

	var artists []models.Artist
	if err := json.Unmarshal([]byte(payload), &artists); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached artists: %w", err)
	}
	return artists, true, nil
}

// Put stores artists for query, replacing any previous entry.
func (r *ArtistCacheRepository) Put(ctx context.Context, query string, artists []models.Artist) error {
	if artists == nil {
		artists = []models.Artist{}
	}
	payload, err := json.Marshal(artists)
	if err != nil {
		return fmt.Errorf("failed to encode artists: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO artist_search_cache (query, payload, created_at) VALUES (?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at
	`, NormalizeQuery(query), string(payload), r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store artist cache entry: %w", err)
	}
	return nil
}

// Purge deletes entries older than ttl and returns how many were removed.
func (r *ArtistCacheRepository) Purge(ctx context.Context, ttl time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM artist_search_cache WHERE created_at < ?`,
		r.now().Add(-ttl).UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge artist cache: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached queries.
func (r *ArtistCacheRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artist_search_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count artist cache: %w", err)
	}
	return n, nil
}
