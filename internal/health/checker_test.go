package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCheck struct {
	err error
}

func (c staticCheck) HealthCheck(ctx context.Context) error { return c.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckerAggregatesResults(t *testing.T) {
	checker := NewChecker(testLogger())
	checker.AddCheck("good", staticCheck{})
	checker.AddCheck("bad", staticCheck{err: errors.New("unreachable")})

	results := checker.Check(context.Background())

	assert.Equal(t, "OK", results["good"])
	assert.Equal(t, "unreachable", results["bad"])
	assert.False(t, checker.Healthy(context.Background()))
}

func TestCheckerHealthyWhenAllPass(t *testing.T) {
	checker := NewChecker(testLogger())
	checker.AddCheck("good", staticCheck{})

	assert.True(t, checker.Healthy(context.Background()))
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	checker := NewRedisChecker(client)
	require.NoError(t, checker.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, checker.HealthCheck(context.Background()))
}
