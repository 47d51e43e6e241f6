package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps sessions in the gateway_sessions table
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a migrated pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Create(ctx context.Context, userID, token string, ttl time.Duration) (*Session, error) {
	s := newSession(userID, token, ttl, time.Now())
	_, err := p.pool.Exec(ctx, `
		insert into gateway_sessions(id, user_id, token, created_at, expires_at)
		values($1, $2, $3, $4, $5)
	`, s.ID, s.UserID, s.Token, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var s Session
	err := p.pool.QueryRow(ctx, `
		select id::text, user_id, token, created_at, expires_at
		from gateway_sessions where id = $1 and expires_at > now()
	`, id).Scan(&s.ID, &s.UserID, &s.Token, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	_, err := p.pool.Exec(ctx, `delete from gateway_sessions where id = $1`, id)
	return err
}

func (p *PostgresStore) Purge(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `delete from gateway_sessions where expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
