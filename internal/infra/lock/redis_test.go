package lock

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("redis container skipped in short mode")
	}

	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis_LockRelease(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	l := NewRedis(client, zap.NewNop(), time.Second, 100*time.Millisecond)

	release, err := l.Lock(ctx, "item:1:submission")
	require.NoError(t, err)

	_, err = l.Lock(ctx, "item:1:submission")
	assert.ErrorIs(t, err, ErrNotAcquired)

	release()

	again, err := l.Lock(ctx, "item:1:submission")
	require.NoError(t, err)
	again()
}

func TestRedis_ExpiredLeaseIsNotReleasedByOldHolder(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	l := NewRedis(client, zap.NewNop(), 100*time.Millisecond, time.Second)

	stale, err := l.Lock(ctx, "k")
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)
	fresh, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	defer fresh()

	stale()
	exists, err := client.Exists(ctx, "lock:k").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestRedis_FailedReleaseIsLogged(t *testing.T) {
	client := startRedis(t)
	core, logs := observer.New(zapcore.WarnLevel)
	l := NewRedis(client, zap.New(core), time.Second, 100*time.Millisecond)

	release, err := l.Lock(context.Background(), "meeting:7")
	require.NoError(t, err)

	require.NoError(t, client.Close())
	release()

	entries := logs.FilterMessage("failed to release lock").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "lock:meeting:7", entries[0].ContextMap()["key"])
}
