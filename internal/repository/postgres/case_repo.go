package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"veridoc/internal/domain"
	"veridoc/internal/port"
)

type caseRepo struct {
	db *sqlx.DB
}

// NewCaseRepo creates a new PostgreSQL-backed CaseRepository.
func NewCaseRepo(db *sqlx.DB) port.CaseRepository {
	return &caseRepo{db: db}
}

func (r *caseRepo) Create(ctx context.Context, c *domain.VerificationCase) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `INSERT INTO cases (
		id, doc_type, original_name, content_type, file_size,
		s3_bucket, s3_key, pair_original_name, pair_content_type, pair_s3_key,
		status, attempts, payload, encrypted, final_status, last_error,
		created_at, updated_at, completed_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16,
		$17, $18, $19
	)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.DocType, c.OriginalName, c.ContentType, c.FileSize,
		c.S3Bucket, c.S3Key, c.PairOriginalName, c.PairContentType, c.PairS3Key,
		c.Status, c.Attempts, c.Payload, c.Encrypted, c.FinalStatus, c.LastError,
		c.CreatedAt, c.UpdatedAt, c.CompletedAt)
	if err != nil {
		return fmt.Errorf("caseRepo.Create: %w", err)
	}
	return nil
}

func (r *caseRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationCase, error) {
	var c domain.VerificationCase
	err := r.db.GetContext(ctx, &c, "SELECT * FROM cases WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, fmt.Errorf("caseRepo.GetByID: %w", err)
	}
	return &c, nil
}

func (r *caseRepo) List(ctx context.Context, offset, limit int) ([]domain.VerificationCase, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM cases"); err != nil {
		return nil, 0, fmt.Errorf("caseRepo.List count: %w", err)
	}

	var cases []domain.VerificationCase
	err := r.db.SelectContext(ctx, &cases,
		"SELECT * FROM cases ORDER BY created_at DESC OFFSET $1 LIMIT $2", offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("caseRepo.List: %w", err)
	}
	return cases, total, nil
}

func (r *caseRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.VerificationCase, error) {
	query := `UPDATE cases SET status = $1, updated_at = $2
		WHERE id IN (
			SELECT id FROM cases WHERE status = $3
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`

	var cases []domain.VerificationCase
	err := r.db.SelectContext(ctx, &cases, query,
		domain.CaseStatusProcessing, time.Now().UTC(), domain.CaseStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("caseRepo.ClaimQueued: %w", err)
	}
	return cases, nil
}

func (r *caseRepo) UpdateResult(ctx context.Context, c *domain.VerificationCase) error {
	c.UpdatedAt = time.Now().UTC()

	query := `UPDATE cases SET
		status = $1, attempts = $2, payload = $3, encrypted = $4,
		final_status = $5, last_error = $6, updated_at = $7, completed_at = $8
		WHERE id = $9`

	res, err := r.db.ExecContext(ctx, query,
		c.Status, c.Attempts, c.Payload, c.Encrypted,
		c.FinalStatus, c.LastError, c.UpdatedAt, c.CompletedAt, c.ID)
	if err != nil {
		return fmt.Errorf("caseRepo.UpdateResult: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrCaseNotFound
	}
	return nil
}

func (r *caseRepo) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string, requeue bool) error {
	status := domain.CaseStatusFailed
	if requeue {
		status = domain.CaseStatusQueued
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE cases SET status = $1, attempts = $2, last_error = $3, updated_at = $4 WHERE id = $5",
		status, attempts, lastError, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("caseRepo.MarkFailed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrCaseNotFound
	}
	return nil
}
