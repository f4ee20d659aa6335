package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"tunenote/internal/domain"
)

// NoteRepository define el contrato de persistencia para notas.
type NoteRepository interface {
	Create(ctx context.Context, note domain.Note) error
	GetByID(ctx context.Context, id string) (domain.Note, error)
	ListByUserID(ctx context.Context, userID string) ([]domain.Note, error)
	Update(ctx context.Context, note domain.Note) error
	Delete(ctx context.Context, id string) error
}

// PgNoteRepository implementa NoteRepository usando pgxpool.
type PgNoteRepository struct {
	pool *pgxpool.Pool
}

func NewPgNoteRepository(pool *pgxpool.Pool) *PgNoteRepository {
	return &PgNoteRepository{pool: pool}
}

func (r *PgNoteRepository) Create(ctx context.Context, note domain.Note) error {
	const query = `
		INSERT INTO notes (id, user_id, text, listening_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		note.ID,
		note.UserID,
		note.Text,
		note.ListeningTo,
		note.CreatedAt,
		note.UpdatedAt,
	)
	return err
}

func (r *PgNoteRepository) GetByID(ctx context.Context, id string) (domain.Note, error) {
	const query = `
		SELECT id, user_id, text, listening_to, created_at, updated_at
		FROM notes
		WHERE id = $1
	`
	var n domain.Note
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&n.ID,
		&n.UserID,
		&n.Text,
		&n.ListeningTo,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	return n, err
}

func (r *PgNoteRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Note, error) {
	const query = `
		SELECT id, user_id, text, listening_to, created_at, updated_at
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		err = rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Text,
			&n.ListeningTo,
			&n.CreatedAt,
			&n.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *PgNoteRepository) Update(ctx context.Context, note domain.Note) error {
	const query = `
		UPDATE notes
		SET text = $2, listening_to = $3, updated_at = $4
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		note.ID,
		note.Text,
		note.ListeningTo,
		note.UpdatedAt,
	)
	return err
}

func (r *PgNoteRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM notes WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
