package node

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_MonotonicAndCapped(t *testing.T) {
	bo := newBackoff(100*time.Millisecond, time.Second)

	var prev time.Duration
	for i := 0; i < 10; i++ {
		d := bo.Next()
		assert.GreaterOrEqual(t, d, prev)
		assert.LessOrEqual(t, d, time.Second)
		prev = d
	}
	assert.Equal(t, time.Second, prev)
}

func TestBackoff_Reset(t *testing.T) {
	bo := newBackoff(100*time.Millisecond, time.Second)
	bo.Next()
	bo.Next()
	bo.Reset()
	assert.Equal(t, 100*time.Millisecond, bo.Next())
}

func TestBackoff_Defaults(t *testing.T) {
	bo := newBackoff(0, 0)
	first := bo.Next()
	assert.Greater(t, first, time.Duration(0))
	assert.LessOrEqual(t, bo.Next(), bo.max)
}
