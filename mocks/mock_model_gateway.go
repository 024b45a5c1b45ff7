package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"veridoc/internal/port"
)

// MockModelGateway is a mock implementation of port.ModelGateway.
type MockModelGateway struct {
	mock.Mock
}

func (m *MockModelGateway) Infer(ctx context.Context, input port.InferInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockModelGateway) InferText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockModelGateway) Transcribe(ctx context.Context, fileBytes []byte, contentType string) (string, error) {
	args := m.Called(ctx, fileBytes, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockModelGateway) ModelName() string {
	args := m.Called()
	return args.String(0)
}
