package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestAtEncodesTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 7, 15, 9, 30, 0, 0, time.UTC)
	u, err := ulid.ParseStrict(At(ts))
	require.NoError(t, err)
	assert.True(t, ulid.Time(u.Time()).Equal(ts))
}
