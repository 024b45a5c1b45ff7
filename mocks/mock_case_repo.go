package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"veridoc/internal/domain"
)

// MockCaseRepository is a mock implementation of port.CaseRepository.
type MockCaseRepository struct {
	mock.Mock
}

func (m *MockCaseRepository) Create(ctx context.Context, c *domain.VerificationCase) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationCase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationCase), args.Error(1)
}

func (m *MockCaseRepository) List(ctx context.Context, offset, limit int) ([]domain.VerificationCase, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.VerificationCase), args.Int(1), args.Error(2)
}

func (m *MockCaseRepository) ClaimQueued(ctx context.Context, limit int) ([]domain.VerificationCase, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VerificationCase), args.Error(1)
}

func (m *MockCaseRepository) UpdateResult(ctx context.Context, c *domain.VerificationCase) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCaseRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string, requeue bool) error {
	args := m.Called(ctx, id, attempts, lastError, requeue)
	return args.Error(0)
}
