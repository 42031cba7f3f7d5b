package redis_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/tracking-viewer/internal/infrastructure/db/redis"
)

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.Connect(context.Background(), redis.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, client.Close())
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := redis.Connect(context.Background(), redis.Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	require.ErrorContains(t, err, "redis ping 127.0.0.1:1")
}
