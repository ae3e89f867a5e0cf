package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerPopsInOrder(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewConsumer(Config{Addr: mr.Addr(), Key: "hv:commands", BlockTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Push(ctx, []byte(`{"command":"trigger_attack"}`)))
	mr.RPush("hv:commands", `{"command":"reset"}`)

	first, err := c.Pop(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":"trigger_attack"}`, string(first))

	second, err := c.Pop(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":"reset"}`, string(second))
}

func TestNewConsumerRequiresKey(t *testing.T) {
	_, err := NewConsumer(Config{Addr: "127.0.0.1:6379"})
	require.Error(t, err)
}
