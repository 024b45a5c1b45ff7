package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"veridoc/internal/domain"
	"veridoc/internal/export"
	"veridoc/internal/service"
)

// MockCaseService is a mock implementation of service.CaseService.
type MockCaseService struct {
	mock.Mock
}

func (m *MockCaseService) Create(ctx context.Context, input *service.CreateCaseInput) (*domain.VerificationCase, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationCase), args.Error(1)
}

func (m *MockCaseService) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationCase, *domain.CaseResult, error) {
	args := m.Called(ctx, id)
	var c *domain.VerificationCase
	if args.Get(0) != nil {
		c = args.Get(0).(*domain.VerificationCase)
	}
	var result *domain.CaseResult
	if args.Get(1) != nil {
		result = args.Get(1).(*domain.CaseResult)
	}
	return c, result, args.Error(2)
}

func (m *MockCaseService) List(ctx context.Context, offset, limit int) ([]domain.VerificationCase, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.VerificationCase), args.Int(1), args.Error(2)
}

func (m *MockCaseService) GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockCaseService) ExportRows(ctx context.Context) ([]export.Row, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]export.Row), args.Error(1)
}

func (m *MockCaseService) ProcessCase(ctx context.Context, c *domain.VerificationCase, maxRetries int) {
	m.Called(ctx, c, maxRetries)
}
