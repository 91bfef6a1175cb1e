package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(1, 2)

	a := rl.GetLimiter("10.0.0.1")
	assert.Same(t, a, rl.GetLimiter("10.0.0.1"))
	assert.NotSame(t, a, rl.GetLimiter("10.0.0.2"))

	assert.True(t, a.Allow())
	assert.True(t, a.Allow())
	assert.False(t, a.Allow())

	assert.Equal(t, 0, rl.Cleanup(time.Hour))
	assert.Equal(t, 2, rl.Cleanup(-time.Second))
	assert.NotSame(t, a, rl.GetLimiter("10.0.0.1"))
}
