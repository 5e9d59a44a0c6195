package campaigns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func running(id uint, priority int, start time.Time) Campaign {
	return Campaign{
		ID:       id,
		Name:     "c",
		Priority: priority,
		StartsAt: start,
		EndsAt:   start.Add(48 * time.Hour),
		Enabled:  true,
	}
}

func TestSelectActivePrefersLowerPriorityThenEarlierStart(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := running(1, 2, now.Add(-3*time.Hour))
	b := running(2, 1, now.Add(-2*time.Hour))
	c := running(3, 1, now.Add(-time.Hour))

	got := SelectActive(now, []Campaign{a, b, c})
	require.NotNil(t, got)
	assert.Equal(t, uint(2), got.ID)
}

func TestSelectActiveTieBreaksOnID(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)

	got := SelectActive(now, []Campaign{running(9, 1, start), running(4, 1, start)})
	require.NotNil(t, got)
	assert.Equal(t, uint(4), got.ID)
}

func TestSelectActiveSkipsNonRunning(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	disabled := running(1, 1, now.Add(-time.Hour))
	disabled.Enabled = false
	future := running(2, 1, now.Add(time.Hour))
	fallback := running(3, 5, now.Add(-time.Hour))

	got := SelectActive(now, []Campaign{disabled, future, fallback})
	require.NotNil(t, got)
	assert.Equal(t, uint(3), got.ID)

	assert.Nil(t, SelectActive(now, []Campaign{disabled, future}))
	assert.Nil(t, ActiveID(now, nil))
}

func TestSelectActiveIsDeterministicAndDoesNotReorderInput(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	input := []Campaign{
		running(7, 3, now.Add(-time.Hour)),
		running(5, 1, now.Add(-time.Hour)),
		running(6, 1, now.Add(-time.Hour)),
	}

	for i := 0; i < 10; i++ {
		id := ActiveID(now, input)
		require.NotNil(t, id)
		assert.Equal(t, uint(5), *id)
	}
	assert.Equal(t, uint(7), input[0].ID)
}
