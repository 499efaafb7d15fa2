package candidate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentpool/resume-indexer/internal/models"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const candidateColumns = `id, full_name, email, document_ref, plain_text, normalized_text, index_status, index_timestamp, index_error, created_at`

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	var c models.Candidate
	err := s.db.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.FullName, &c.Email, &c.DocumentRef, &c.PlainText, &c.NormalizedText, &c.IndexStatus, &c.IndexTimestamp, &c.IndexError, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) ListWithDocument(ctx context.Context) ([]models.Candidate, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE document_ref <> '' ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.FullName, &c.Email, &c.DocumentRef, &c.PlainText, &c.NormalizedText, &c.IndexStatus, &c.IndexTimestamp, &c.IndexError, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkIndexed(ctx context.Context, id uuid.UUID, plainText, normalizedText string, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE candidates
		 SET plain_text = $2, normalized_text = $3, index_status = $4,
		     index_timestamp = GREATEST(COALESCE(index_timestamp, $5), $5), index_error = NULL
		 WHERE id = $1`,
		id, plainText, normalizedText, models.IndexStatusSuccess, at,
	)
	if err != nil {
		return fmt.Errorf("mark indexed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkIndexFailed(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE candidates
		 SET index_status = $2,
		     index_timestamp = GREATEST(COALESCE(index_timestamp, $3), $3), index_error = $4
		 WHERE id = $1`,
		id, models.IndexStatusFailed, at, reason,
	)
	if err != nil {
		return fmt.Errorf("mark index failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
