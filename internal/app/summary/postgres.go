package summary

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warmtransfer/internal/app/db"
	"warmtransfer/internal/pkg/logx"
)

// DefaultPurgeInterval is how often RunPurger deletes expired rows.
const DefaultPurgeInterval = 10 * time.Minute

const (
	upsertSummarySQL = `
INSERT INTO room_summaries (room, summary, from_identity, to_identity, updated_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (room) DO UPDATE SET
    summary       = EXCLUDED.summary,
    from_identity = EXCLUDED.from_identity,
    to_identity   = EXCLUDED.to_identity,
    updated_at    = EXCLUDED.updated_at,
    expires_at    = EXCLUDED.expires_at`

	selectSummarySQL = `
SELECT room, summary, from_identity, to_identity, updated_at
FROM room_summaries
WHERE room = $1 AND (expires_at IS NULL OR expires_at > now())`

	purgeExpiredSQL = `DELETE FROM room_summaries WHERE expires_at IS NOT NULL AND expires_at <= now()`
)

// PostgresStore persists summaries in the room_summaries table.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresStore connects, migrates, and returns a PostgresStore.
func NewPostgresStore(ctx context.Context, dsn string, ttl time.Duration) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("summary: DATABASE_URL is required for the postgres store")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool, ttl: ttl}, nil
}

// Kind implements Store.
func (s *PostgresStore) Kind() string { return KindPostgres }

// Put implements Store.
func (s *PostgresStore) Put(ctx context.Context, e Entry) error {
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}

	var expiresAt *time.Time
	if s.ttl > 0 {
		t := e.UpdatedAt.Add(s.ttl)
		expiresAt = &t
	}

	_, err := s.pool.Exec(ctx, upsertSummarySQL,
		e.Room, e.Summary, e.FromIdentity, e.ToIdentity, e.UpdatedAt, expiresAt)
	return err
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, room string) (Entry, error) {
	var e Entry
	err := s.pool.QueryRow(ctx, selectSummarySQL, room).
		Scan(&e.Room, &e.Summary, &e.FromIdentity, &e.ToIdentity, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// PurgeExpired deletes rows past their expiry and returns the number removed.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, purgeExpiredSQL)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RunPurger calls PurgeExpired every interval until ctx is done.
func (s *PostgresStore) RunPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logx.Error(err, "Failed to purge expired summaries")
				}
				continue
			}
			if n > 0 {
				logx.Debug("Purged expired summaries", "rows", n)
			}
		}
	}
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
