package threshold

import (
	"strconv"
	"strings"
	"time"
)

// FormatISODuration renders d as an ISO-8601 duration using hours, minutes and
// seconds only: "PT8H", "PT5H30M", "PT-30M", "PT0S". Negative durations carry
// the sign on every non-zero component.
func FormatISODuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}

	// split into floored seconds and a non-negative nanosecond remainder
	seconds := int64(d / time.Second)
	nanos := int64(d % time.Second)
	if nanos < 0 {
		seconds--
		nanos += int64(time.Second)
	}

	effective := seconds
	if seconds < 0 && nanos > 0 {
		effective++
	}

	hours := effective / 3600
	minutes := (effective % 3600) / 60
	secs := effective % 60

	var b strings.Builder
	b.WriteString("PT")
	if hours != 0 {
		b.WriteString(strconv.FormatInt(hours, 10))
		b.WriteByte('H')
	}
	if minutes != 0 {
		b.WriteString(strconv.FormatInt(minutes, 10))
		b.WriteByte('M')
	}
	if secs == 0 && nanos == 0 && b.Len() > 2 {
		return b.String()
	}

	if seconds < 0 && nanos > 0 && secs == 0 {
		b.WriteString("-0")
	} else {
		b.WriteString(strconv.FormatInt(secs, 10))
	}

	if nanos > 0 {
		fraction := nanos
		if seconds < 0 {
			fraction = int64(time.Second) - nanos
		}
		digits := strings.TrimRight(strconv.FormatInt(fraction+int64(time.Second), 10)[1:], "0")
		b.WriteByte('.')
		b.WriteString(digits)
	}

	b.WriteByte('S')
	return b.String()
}

// FormatHoursMinutes renders whole minutes as "{hours}h {minutes}m" with
// truncating division, so -30 is "0h -30m" and -120 is "-2h 0m".
func FormatHoursMinutes(totalMinutes int64) string {
	return strconv.FormatInt(totalMinutes/60, 10) + "h " + strconv.FormatInt(totalMinutes%60, 10) + "m"
}
