package checkout

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderID(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	id := NewOrderID(at, 42)

	assert.True(t, strings.HasPrefix(id, "2026031415092642"))
	assert.Len(t, id, len("2026031415092642")+6)
}

func TestNewOrderID_NoCollisionWithinSameSecond(t *testing.T) {
	t.Parallel()

	at := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := NewOrderID(at, 7)
		assert.False(t, seen[id], "duplicate order id %s", id)
		seen[id] = true
	}
}
