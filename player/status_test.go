package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFmtClock(t *testing.T) {
	assert.Equal(t, "00:00", fmtClock(0))
	assert.Equal(t, "00:59", fmtClock(59*time.Second))
	assert.Equal(t, "01:05", fmtClock(65*time.Second))
	assert.Equal(t, "12:34", fmtClock(12*time.Minute+34*time.Second))
	assert.Equal(t, "00:00", fmtClock(-3*time.Second), "negative clamps to zero")
}

func TestStatusLineOnSchedule(t *testing.T) {
	s := statusLine(5*time.Second, 90*time.Second, 12*time.Millisecond)

	assert.Contains(t, s, "00:05/01:30")
	assert.Contains(t, s, "+0012ms")
	assert.Contains(t, s, statusOnTime)
	assert.NotContains(t, s, statusBehind)
}

func TestStatusLineBehindSchedule(t *testing.T) {
	s := statusLine(time.Second, 10*time.Second, -7*time.Millisecond)

	assert.Contains(t, s, "00:01/00:10")
	assert.Contains(t, s, "-0007ms")
	assert.Contains(t, s, statusBehind)
}

func TestStatusLineSubMillisecondLagIsBehind(t *testing.T) {
	// Truncation renders the count as zero but the color must still alert
	s := statusLine(time.Second, 10*time.Second, -300*time.Microsecond)

	assert.Contains(t, s, "+0000ms")
	assert.Contains(t, s, statusBehind)
	assert.NotContains(t, s, statusOnTime)
}

func TestStatusLineZeroDelayIsOnSchedule(t *testing.T) {
	s := statusLine(0, time.Second, 0)

	assert.Contains(t, s, "+0000ms")
	assert.Contains(t, s, statusOnTime)
}

func TestStatusLineUnknownTotal(t *testing.T) {
	s := statusLine(3*time.Second, 0, time.Millisecond)

	assert.Contains(t, s, "00:03/--:--")
}

func TestStatusLineFixedWidth(t *testing.T) {
	// Same length regardless of delay sign or magnitude, the line must
	// not jitter between frames
	a := statusLine(time.Second, time.Minute, 2*time.Millisecond)
	b := statusLine(time.Second, time.Minute, -400*time.Millisecond)
	assert.Equal(t, len(a), len(b))
}
