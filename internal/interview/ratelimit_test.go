package interview

import (
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are limited independently")

	rl.Forget("a")
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiterWindowExpires(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(1, 50*time.Millisecond)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	time.Sleep(80 * time.Millisecond)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiterDisabled(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(0, time.Minute)
	defer rl.Stop()
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("a"))
	}
	rl.Stop()
}

func TestConnRegistry(t *testing.T) {
	t.Parallel()
	reg := NewConnRegistry()
	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}

	reg.Register("sess-1", conn1)
	reg.Register("sess-1", conn2)
	reg.Unregister("sess-1", conn1)
	reg.Unregister("sess-1", conn2)
	reg.Unregister("sess-2", conn1)

	assert.Equal(t, 0, reg.CloseSession("sess-1"), "all sockets unregistered")
	assert.Equal(t, 0, reg.CloseSession("unknown"))
}
