package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHealth_ReportsEachProbe(t *testing.T) {
	status := CheckHealth(context.Background(), time.Second,
		Probe{Name: "redis", Check: func(context.Context) error { return nil }},
		Probe{Name: "api", Check: func(context.Context) error { return errors.New("connection refused") }},
	)

	require.Len(t, status.Results, 2)
	assert.Equal(t, "redis", status.Results[0].Name)
	assert.True(t, status.Results[0].Healthy)
	assert.False(t, status.Results[1].Healthy)
	assert.Equal(t, "connection refused", status.Results[1].Error)
	assert.False(t, status.Healthy())
}

func TestCheckHealth_ProbeTimeout(t *testing.T) {
	status := CheckHealth(context.Background(), 20*time.Millisecond,
		Probe{Name: "slow", Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	)

	require.Len(t, status.Results, 1)
	assert.False(t, status.Results[0].Healthy)
	assert.Contains(t, status.Results[0].Error, "deadline")
}
