package gateway_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"veridoc/internal/gateway"
	"veridoc/internal/port"
	"veridoc/mocks"
)

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := new(mocks.MockModelGateway)
	secondary := new(mocks.MockModelGateway)
	primary.On("InferText", mock.Anything, "p").Return("primary result", nil)

	f := gateway.NewFallbackGateway(
		[]port.ModelGateway{primary, secondary},
		[]string{"fireworks", "openai"},
	)

	out, err := f.InferText(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "primary result", out)
	secondary.AssertNotCalled(t, "InferText", mock.Anything, mock.Anything)
}

func TestFallback_RateLimitedPrimaryFallsToSecondary(t *testing.T) {
	primary := new(mocks.MockModelGateway)
	secondary := new(mocks.MockModelGateway)
	primary.On("InferText", mock.Anything, "p").
		Return("", gateway.NewRateLimitError("fireworks", errors.New("429"), 60))
	secondary.On("InferText", mock.Anything, "p").Return("secondary result", nil)

	f := gateway.NewFallbackGateway(
		[]port.ModelGateway{primary, secondary},
		[]string{"fireworks", "openai"},
	)

	out, err := f.InferText(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "secondary result", out)
}

func TestFallback_CircuitSkipsRateLimitedGateway(t *testing.T) {
	primary := new(mocks.MockModelGateway)
	secondary := new(mocks.MockModelGateway)
	primary.On("InferText", mock.Anything, "p").
		Return("", gateway.NewRateLimitError("fireworks", errors.New("429"), 60)).Once()
	secondary.On("InferText", mock.Anything, "p").Return("secondary result", nil).Twice()

	f := gateway.NewFallbackGateway(
		[]port.ModelGateway{primary, secondary},
		[]string{"fireworks", "openai"},
	)

	// First call opens the primary circuit; second call must not touch it.
	_, err := f.InferText(context.Background(), "p")
	require.NoError(t, err)
	_, err = f.InferText(context.Background(), "p")
	require.NoError(t, err)

	primary.AssertNumberOfCalls(t, "InferText", 1)
	secondary.AssertNumberOfCalls(t, "InferText", 2)
}

func TestFallback_AllRateLimited(t *testing.T) {
	primary := new(mocks.MockModelGateway)
	secondary := new(mocks.MockModelGateway)
	primary.On("InferText", mock.Anything, "p").
		Return("", gateway.NewRateLimitError("fireworks", errors.New("429"), 30))
	secondary.On("InferText", mock.Anything, "p").
		Return("", gateway.NewRateLimitError("openai", errors.New("429"), 90))

	f := gateway.NewFallbackGateway(
		[]port.ModelGateway{primary, secondary},
		[]string{"fireworks", "openai"},
	)

	_, err := f.InferText(context.Background(), "p")
	var rlErr *gateway.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "all", rlErr.Provider)
}

func TestFallback_NonRateLimitErrorsPropagate(t *testing.T) {
	primary := new(mocks.MockModelGateway)
	secondary := new(mocks.MockModelGateway)
	primary.On("InferText", mock.Anything, "p").Return("", errors.New("bad request"))
	secondary.On("InferText", mock.Anything, "p").Return("", errors.New("server error"))

	f := gateway.NewFallbackGateway(
		[]port.ModelGateway{primary, secondary},
		[]string{"fireworks", "openai"},
	)

	_, err := f.InferText(context.Background(), "p")
	require.Error(t, err)
	var rlErr *gateway.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
	assert.Contains(t, err.Error(), "all gateways failed")
}

func TestFallback_ModelNameReportsPrimary(t *testing.T) {
	primary := new(mocks.MockModelGateway)
	primary.On("ModelName").Return("model-a")

	f := gateway.NewFallbackGateway([]port.ModelGateway{primary}, []string{"fireworks"})
	assert.Equal(t, "model-a", f.ModelName())
}
