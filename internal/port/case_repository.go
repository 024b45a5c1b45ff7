package port

import (
	"context"

	"github.com/google/uuid"

	"veridoc/internal/domain"
)

// CaseRepository persists verification cases.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.VerificationCase) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationCase, error)
	List(ctx context.Context, offset, limit int) ([]domain.VerificationCase, int, error)

	// ClaimQueued atomically moves up to limit queued cases to processing
	// and returns them, skipping rows locked by other workers.
	ClaimQueued(ctx context.Context, limit int) ([]domain.VerificationCase, error)

	UpdateResult(ctx context.Context, c *domain.VerificationCase) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string, requeue bool) error
}
