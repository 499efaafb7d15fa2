package runs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentpool/resume-indexer/internal/indexer"
	"github.com/talentpool/resume-indexer/internal/models"
)

// Service persists bulk reindex reports so admins can audit past runs.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) Record(ctx context.Context, report *indexer.Report) (*models.ReindexRun, error) {
	errorsJSON, err := json.Marshal(report.Errors)
	if err != nil {
		return nil, fmt.Errorf("marshal report errors: %w", err)
	}

	run := &models.ReindexRun{
		ID:         uuid.New(),
		Total:      report.Total,
		Succeeded:  report.Succeeded,
		Failed:     report.Failed,
		Errors:     errorsJSON,
		Scope:      report.Scope,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO reindex_runs (id, total, succeeded, failed, errors, scope, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.Total, run.Succeeded, run.Failed, run.Errors, run.Scope, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reindex run: %w", err)
	}

	return run, nil
}

type Query struct {
	Since  *time.Time
	Limit  int
	Offset int
}

func (s *Service) List(ctx context.Context, q Query) ([]models.ReindexRun, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	query := `SELECT id, total, succeeded, failed, errors, scope, started_at, finished_at
			  FROM reindex_runs`
	args := []interface{}{}
	if q.Since != nil {
		query += " WHERE started_at >= $1"
		args = append(args, *q.Since)
	}
	query += fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reindex runs: %w", err)
	}
	defer rows.Close()

	var out []models.ReindexRun
	for rows.Next() {
		var r models.ReindexRun
		if err := rows.Scan(&r.ID, &r.Total, &r.Succeeded, &r.Failed, &r.Errors, &r.Scope, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan reindex run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
