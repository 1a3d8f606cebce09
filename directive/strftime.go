package directive

import (
	"strconv"
	"time"
)

// formatTime renders t according to a strftime-style layout. Only the
// conversions SSITimeFormat actually needs are supported (spec.md's
// ambient configuration surface); an unrecognized %-conversion is
// passed through literally rather than erroring, matching strftime's
// own permissive behavior. There is no corpus dependency for strftime
// layouts, so this is hand-rolled against the Go standard library
// (documented in DESIGN.md as a stdlib-justified leaf).
func formatTime(layout string, t time.Time) string {
	out := make([]byte, 0, len(layout)+16)
	for i := 0; i < len(layout); i++ {
		c := layout[i]
		if c != '%' || i+1 >= len(layout) {
			out = append(out, c)
			continue
		}
		i++
		switch layout[i] {
		case 'A':
			out = append(out, t.Weekday().String()...)
		case 'a':
			out = append(out, t.Weekday().String()[:3]...)
		case 'B':
			out = append(out, t.Month().String()...)
		case 'b':
			out = append(out, t.Month().String()[:3]...)
		case 'd':
			out = append(out, pad2(t.Day())...)
		case 'e':
			out = strconv.AppendInt(out, int64(t.Day()), 10)
		case 'm':
			out = append(out, pad2(int(t.Month()))...)
		case 'Y':
			out = strconv.AppendInt(out, int64(t.Year()), 10)
		case 'y':
			out = append(out, pad2(t.Year()%100)...)
		case 'H':
			out = append(out, pad2(t.Hour())...)
		case 'I':
			h := t.Hour() % 12
			if h == 0 {
				h = 12
			}
			out = append(out, pad2(h)...)
		case 'M':
			out = append(out, pad2(t.Minute())...)
		case 'S':
			out = append(out, pad2(t.Second())...)
		case 'p':
			if t.Hour() < 12 {
				out = append(out, "AM"...)
			} else {
				out = append(out, "PM"...)
			}
		case 'Z':
			name, _ := t.Zone()
			out = append(out, name...)
		case 'n':
			out = append(out, '\n')
		case '%':
			out = append(out, '%')
		default:
			out = append(out, '%', layout[i])
		}
	}
	return string(out)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
