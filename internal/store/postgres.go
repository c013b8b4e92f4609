package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-ai-api/internal/model/chat"
)

const uniqueViolation = "23505"

// Postgres implements Store on top of a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens a pgx pool against the given DSN and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(pingCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// InitSchema creates the users and chats tables if they do not already exist.
func (p *Postgres) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS chats (
		id SERIAL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(user_id),
		message TEXT NOT NULL,
		reply TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_chats_user_id ON chats(user_id);
	`

	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Ping reports whether the underlying pool can reach the database.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) FindUserByEmail(ctx context.Context, email string) (chat.User, error) {
	var user chat.User

	query := `SELECT user_id, name, email, created_at FROM users WHERE email = $1`

	err := p.pool.QueryRow(ctx, query, email).Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.User{}, ErrNotFound
	}
	if err != nil {
		return chat.User{}, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

func (p *Postgres) FindUserByID(ctx context.Context, userID string) (chat.User, error) {
	var user chat.User

	query := `SELECT user_id, name, email, created_at FROM users WHERE user_id = $1`

	err := p.pool.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.User{}, ErrNotFound
	}
	if err != nil {
		return chat.User{}, fmt.Errorf("failed to find user by id: %w", err)
	}

	return user, nil
}

func (p *Postgres) InsertUser(ctx context.Context, user chat.User) (chat.User, error) {
	query := `
		INSERT INTO users (user_id, name, email)
		VALUES ($1, $2, $3)
		RETURNING user_id, name, email, created_at`

	var inserted chat.User
	err := p.pool.QueryRow(ctx, query, user.UserID, user.Name, user.Email).Scan(
		&inserted.UserID,
		&inserted.Name,
		&inserted.Email,
		&inserted.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return chat.User{}, ErrDuplicateEmail
		}
		return chat.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	return inserted, nil
}

func (p *Postgres) InsertTurn(ctx context.Context, turn chat.Turn) (chat.Turn, error) {
	query := `
		INSERT INTO chats (user_id, message, reply)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, message, reply, created_at`

	var inserted chat.Turn
	err := p.pool.QueryRow(ctx, query, turn.UserID, turn.Message, turn.Reply).Scan(
		&inserted.ID,
		&inserted.UserID,
		&inserted.Message,
		&inserted.Reply,
		&inserted.CreatedAt,
	)
	if err != nil {
		return chat.Turn{}, fmt.Errorf("failed to insert chat turn: %w", err)
	}

	return inserted, nil
}

func (p *Postgres) ListTurnsByUser(ctx context.Context, userID string) ([]chat.Turn, error) {
	query := `
		SELECT id, user_id, message, reply, created_at
		FROM chats WHERE user_id = $1
		ORDER BY id ASC`

	rows, err := p.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat turns: %w", err)
	}
	defer rows.Close()

	turns := make([]chat.Turn, 0, 16)
	for rows.Next() {
		var turn chat.Turn
		if err := rows.Scan(&turn.ID, &turn.UserID, &turn.Message, &turn.Reply, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat turns: %w", err)
	}

	return turns, nil
}
