package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	InsertToken(ctx context.Context, token string, userID int64) error
	GetTokenUser(ctx context.Context, token string) (*User, error)
}

type PgRepository struct {
	db *pgxpool.Pool
}

func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

// CreateUser is only used by the account CLI, so it stays off the
// Repository interface the HTTP service consumes.
func (r *PgRepository) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO app_user (username, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`, username, passwordHash).Scan(&id)
	return id, err
}

func (r *PgRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at
		FROM app_user
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgRepository) InsertToken(ctx context.Context, token string, userID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO auth_token (token, user_id)
		VALUES ($1, $2)
	`, token, userID)
	return err
}

func (r *PgRepository) GetTokenUser(ctx context.Context, token string) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, `
		SELECT u.id, u.username, u.password_hash, u.created_at
		FROM auth_token t
		JOIN app_user u ON u.id = t.user_id
		WHERE t.token = $1
	`, token).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
