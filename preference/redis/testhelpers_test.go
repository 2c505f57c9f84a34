//go:build integration

package redis_test

import (
	"context"
	"strings"
	"testing"

	"github.com/marcelsud/n8n-gateway/preference/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	testcontainersredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// SetupRedisContainer starts a Redis testcontainer and returns its address
func SetupRedisContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	redisContainer, err := testcontainersredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start Redis container")

	addr, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err, "failed to get Redis connection string")

	cleanup := func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	}
	return strings.TrimPrefix(addr, "redis://"), cleanup
}

// CreateTestClient connects to the container through Connect
func CreateTestClient(t *testing.T, ctx context.Context, addr string) *goredis.Client {
	t.Helper()

	client, err := redis.Connect(ctx, addr, "", 0)
	require.NoError(t, err, "failed to connect to Redis")
	t.Cleanup(func() { client.Close() })

	return client
}
