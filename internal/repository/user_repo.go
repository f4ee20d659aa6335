package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tunenote/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	SetSpotifyTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error
	GetSpotifyTokens(ctx context.Context, id string) (SpotifyTokens, error)
}

// SpotifyTokens agrupa las credenciales de Spotify guardadas para un usuario.
type SpotifyTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, email, password_hash, first_name, last_name,
		       spotify_access_token, spotify_refresh_token, spotify_token_expires_at, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, email, password_hash, first_name, last_name,
		       spotify_access_token, spotify_refresh_token, spotify_token_expires_at, created_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// SetSpotifyTokens escribe las tres columnas de Spotify en un solo UPDATE.
func (r *PgUserRepository) SetSpotifyTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET spotify_access_token = $2, spotify_refresh_token = $3, spotify_token_expires_at = $4
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, accessToken, refreshToken, expiresAt)
	return err
}

func (r *PgUserRepository) GetSpotifyTokens(ctx context.Context, id string) (SpotifyTokens, error) {
	const query = `
		SELECT spotify_access_token, spotify_refresh_token, spotify_token_expires_at
		FROM users
		WHERE id = $1
	`
	var t SpotifyTokens
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.AccessToken,
		&t.RefreshToken,
		&t.ExpiresAt,
	)
	return t, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PgUserRepository) scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.SpotifyAccessToken,
		&u.SpotifyRefreshToken,
		&u.SpotifyTokenExpiresAt,
		&u.CreatedAt,
	)
	return u, err
}
