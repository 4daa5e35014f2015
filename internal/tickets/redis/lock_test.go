package redis_test

import (
	"context"
	"testing"
	"time"

	"shop-bot/internal/config"
	ticketredis "shop-bot/internal/tickets/redis"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestGuardIntegration exercises the creation guard against a real
// Redis container
func TestGuardIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)

	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	guard := ticketredis.NewRedis(client, config.RedisConfig{TicketLockTTL: 2 * time.Minute})

	const userID = int64(42)
	const category = "Purchase"

	// First creation takes the guard
	acquired, err := guard.AcquireGuard(userID, category, "ticket-1")
	require.NoError(t, err)
	assert.True(t, acquired, "Expected first guard acquisition to succeed")

	// A concurrent creation for the same pair is blocked
	acquired, err = guard.AcquireGuard(userID, category, "ticket-2")
	require.NoError(t, err)
	assert.False(t, acquired, "Expected second acquisition to be blocked")

	// Another category for the same user is unrelated
	acquired, err = guard.AcquireGuard(userID, "Support", "ticket-3")
	require.NoError(t, err)
	assert.True(t, acquired, "Expected other category to be unaffected")

	// A non-owner release leaves the guard in place
	require.NoError(t, guard.ReleaseGuard(userID, category, "ticket-2"))
	acquired, err = guard.AcquireGuard(userID, category, "ticket-4")
	require.NoError(t, err)
	assert.False(t, acquired, "Expected guard to survive a non-owner release")

	// The owner's release frees the pair
	require.NoError(t, guard.ReleaseGuard(userID, category, "ticket-1"))
	acquired, err = guard.AcquireGuard(userID, category, "ticket-5")
	require.NoError(t, err)
	assert.True(t, acquired, "Expected guard to be free after owner release")
}
