package player

import (
	"fmt"
	"time"
)

// Status line colors
const (
	statusNeutral = "\x1b[38;2;200;200;200m"
	statusOnTime  = "\x1b[38;2;0;255;0m"
	statusBehind  = "\x1b[38;2;255;0;0m"
)

// fmtClock renders a duration as MM:SS
func fmtClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// statusLine renders elapsed and total playback time in a neutral color
// followed by the scheduling delay in milliseconds. The delay is signed
// and zero padded to a fixed width so the line length does not jitter
// between frames, drawn green while on schedule and red once behind.
// Total renders as --:-- when the container does not report a length.
func statusLine(elapsed, total, delay time.Duration) string {
	clock := fmtClock(elapsed) + "/"
	if total > 0 {
		clock += fmtClock(total)
	} else {
		clock += "--:--"
	}

	// Color by the sign of the raw delay, the millisecond count
	// truncates sub-millisecond lag to zero
	ms := delay.Milliseconds()
	color := statusOnTime
	if delay < 0 {
		color = statusBehind
	}

	return fmt.Sprintf("%s%s %s%+05dms%s", statusNeutral, clock, color, ms, escReset)
}
