package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"veridoc/internal/port"
)

// circuitState tracks rate-limit backoff for a single gateway.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackGateway tries gateways in order, skipping those with open
// circuits. It implements port.ModelGateway.
type FallbackGateway struct {
	gateways []port.ModelGateway
	circuits []*circuitState
	names    []string
}

// NewFallbackGateway creates a FallbackGateway from an ordered list of gateways and their names.
func NewFallbackGateway(gateways []port.ModelGateway, names []string) *FallbackGateway {
	circuits := make([]*circuitState, len(gateways))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackGateway{
		gateways: gateways,
		circuits: circuits,
		names:    names,
	}
}

func (f *FallbackGateway) Infer(ctx context.Context, input port.InferInput) (string, error) {
	return f.call(func(g port.ModelGateway) (string, error) {
		return g.Infer(ctx, input)
	})
}

func (f *FallbackGateway) InferText(ctx context.Context, prompt string) (string, error) {
	return f.call(func(g port.ModelGateway) (string, error) {
		return g.InferText(ctx, prompt)
	})
}

func (f *FallbackGateway) Transcribe(ctx context.Context, fileBytes []byte, contentType string) (string, error) {
	return f.call(func(g port.ModelGateway) (string, error) {
		return g.Transcribe(ctx, fileBytes, contentType)
	})
}

// ModelName reports the primary gateway's model.
func (f *FallbackGateway) ModelName() string {
	if len(f.gateways) == 0 {
		return ""
	}
	return f.gateways[0].ModelName()
}

func (f *FallbackGateway) call(op func(port.ModelGateway) (string, error)) (string, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, g := range f.gateways {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("gateway.FallbackGateway: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := op(g)
		if err == nil {
			return out, nil
		}

		log.Printf("gateway.FallbackGateway: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		// Every gateway was skipped or rate limited
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return "", NewRateLimitError("all", fmt.Errorf("all gateways rate limited"), int(retryAfter.Seconds()))
	}

	return "", fmt.Errorf("all gateways failed: %w", lastErr)
}
