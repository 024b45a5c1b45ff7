package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"veridoc/internal/domain"
	"veridoc/internal/service"
)

// MockVerificationService is a mock implementation of service.VerificationService.
type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) VerifyDocument(ctx context.Context, file service.FileInput, docType domain.DocumentType) *domain.DocumentResult {
	args := m.Called(ctx, file, docType)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.DocumentResult)
}

func (m *MockVerificationService) VerifyPair(ctx context.Context, passport, license service.FileInput) *domain.CaseResult {
	args := m.Called(ctx, passport, license)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.CaseResult)
}

func (m *MockVerificationService) CheckType(ctx context.Context, file service.FileInput, declared domain.DocumentType) domain.TypeInferenceResult {
	args := m.Called(ctx, file, declared)
	return args.Get(0).(domain.TypeInferenceResult)
}

func (m *MockVerificationService) CheckAuthenticity(ctx context.Context, file service.FileInput, docType domain.DocumentType) domain.AuthenticityVerdict {
	args := m.Called(ctx, file, docType)
	return args.Get(0).(domain.AuthenticityVerdict)
}
