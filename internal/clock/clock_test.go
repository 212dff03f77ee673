package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClockNow(t *testing.T) {
	c := RealClock{}
	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestMockClock(t *testing.T) {
	fixed := time.Date(2022, 7, 4, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(fixed)

	assert.Equal(t, fixed, c.Now())
	assert.Equal(t, fixed.UnixMilli(), c.NowUnixMilli())

	c.Advance(90 * time.Minute)
	assert.Equal(t, fixed.Add(90*time.Minute), c.Now())

	other := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Set(other)
	assert.Equal(t, other, c.Now())
}
