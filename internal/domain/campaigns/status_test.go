package campaigns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	cases := []struct {
		name     string
		start    time.Time
		end      time.Time
		enabled  bool
		expected Status
	}{
		{name: "disabled wins over everything", start: time.Time{}, end: time.Time{}, enabled: false, expected: StatusInactive},
		{name: "unparseable start", start: time.Time{}, end: end, enabled: true, expected: StatusInvalid},
		{name: "unparseable end", start: start, end: time.Time{}, enabled: true, expected: StatusInvalid},
		{name: "not started", start: now.Add(time.Millisecond), end: end, enabled: true, expected: StatusScheduled},
		{name: "already over", start: start, end: now.Add(-time.Millisecond), enabled: true, expected: StatusEnded},
		{name: "inside window", start: start, end: end, enabled: true, expected: StatusRunning},
		{name: "start boundary is running", start: now, end: end, enabled: true, expected: StatusRunning},
		{name: "end boundary is running", start: start, end: now, enabled: true, expected: StatusRunning},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ResolveStatus(now, tc.start, tc.end, tc.enabled))
		})
	}
}

func TestResolveStatusIsStableWithinWindow(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	valid := map[Status]bool{
		StatusInactive: true, StatusInvalid: true, StatusScheduled: true, StatusEnded: true, StatusRunning: true,
	}

	first := ResolveStatus(start.Add(time.Hour), start, end, true)
	second := ResolveStatus(start.Add(20*time.Hour), start, end, true)

	assert.Equal(t, first, second)
	assert.True(t, valid[first])
}

func TestParseTimestamp(t *testing.T) {
	sp := time.FixedZone("BRT", -3*60*60)

	got, err := ParseTimestamp("2026-03-10T09:30", sp)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC), got)

	got, err = ParseTimestamp("2026-03-10T09:30:00Z", sp)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC), got)

	_, err = ParseTimestamp("yesterday", nil)
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestCampaignValidate(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	ok := Campaign{Name: "promo", StartsAt: start, EndsAt: start.Add(time.Hour), Priority: 1}
	assert.NoError(t, ok.Validate())

	noName := ok
	noName.Name = ""
	assert.ErrorIs(t, noName.Validate(), ErrNameRequired)

	sameInstant := ok
	sameInstant.EndsAt = start
	assert.ErrorIs(t, sameInstant.Validate(), ErrInvalidWindow)

	zeroPriority := ok
	zeroPriority.Priority = 0
	assert.ErrorIs(t, zeroPriority.Validate(), ErrInvalidPriority)

	missing := ok
	missing.StartsAt = time.Time{}
	assert.ErrorIs(t, missing.Validate(), ErrInvalidTime)
}
