package verify_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"veridoc/internal/domain"
	"veridoc/internal/port"
	"veridoc/internal/verify"
	"veridoc/mocks"
)

func TestBuildFraudPrompt(t *testing.T) {
	assert.Contains(t, verify.BuildFraudPrompt(domain.DocTypePassport), "MRZ")
	assert.Contains(t, verify.BuildFraudPrompt(domain.DocTypeDriversLicense), "PDF417")
}

func TestAssess_SuspectedFraud(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("Infer", mock.Anything, mock.MatchedBy(func(in port.InferInput) bool {
		return strings.Contains(in.Prompt, "passport")
	})).Return("```json\n{\"is_suspected_fraud\": true, \"confidence\": 0.92, \"explanation\": \"photo edges misaligned\"}\n```", nil)

	a := verify.NewAssessor(gw)
	verdict := a.Assess(context.Background(), []byte("img"), "image/jpeg", domain.DocTypePassport)

	assert.True(t, verdict.IsSuspectedFraud)
	assert.InDelta(t, 0.92, verdict.Confidence, 0.001)
	assert.Equal(t, "photo edges misaligned", verdict.Explanation)
}

func TestAssess_Clean(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("Infer", mock.Anything, mock.Anything).
		Return(`{"is_suspected_fraud": false, "confidence": 0.85, "explanation": "MRZ present, fonts consistent"}`, nil)

	a := verify.NewAssessor(gw)
	verdict := a.Assess(context.Background(), []byte("img"), "image/jpeg", domain.DocTypePassport)

	assert.False(t, verdict.IsSuspectedFraud)
	assert.InDelta(t, 0.85, verdict.Confidence, 0.001)
}

func TestAssess_GatewayFailureYieldsZeroVerdict(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("Infer", mock.Anything, mock.Anything).
		Return("", errors.New("upstream timeout"))

	a := verify.NewAssessor(gw)
	verdict := a.Assess(context.Background(), []byte("img"), "image/jpeg", domain.DocTypeDriversLicense)

	assert.Equal(t, domain.AuthenticityVerdict{}, verdict)
}

func TestAssess_MalformedReplyYieldsZeroVerdict(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("Infer", mock.Anything, mock.Anything).
		Return("the document looks fine to me", nil)

	a := verify.NewAssessor(gw)
	verdict := a.Assess(context.Background(), []byte("img"), "image/jpeg", domain.DocTypePassport)

	assert.Equal(t, domain.AuthenticityVerdict{}, verdict)
}
