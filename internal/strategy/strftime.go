package strategy

import (
	"fmt"
	"strings"
	"time"
)

// strftimeLayouts maps strftime directives to Go reference-time layouts.
var strftimeLayouts = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'j': "002",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'f': "000000",
	'p': "PM",
	'b': "Jan",
	'h': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'z': "-0700",
	'Z': "MST",
	'F': "2006-01-02",
	'T': "15:04:05",
	'D': "01/02/06",
	'R': "15:04",
	'%': "%",
}

// layout converts a strftime format such as "%Y-%m-%d" into a Go layout.
func layout(format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("format %q ends with a bare %%", format)
		}
		i++
		l, ok := strftimeLayouts[format[i]]
		if !ok {
			return "", fmt.Errorf("format %q uses unsupported directive %%%c", format, format[i])
		}
		if format[i] == 'f' && (b.Len() == 0 || !strings.HasSuffix(b.String(), ".")) {
			// Go only recognizes fractional seconds after a separator.
			b.WriteString(".")
		}
		b.WriteString(l)
	}
	return b.String(), nil
}

// hasClock reports whether a strftime format carries time-of-day fields.
func hasClock(format string) bool {
	for _, d := range []string{"%H", "%I", "%M", "%S", "%T", "%R", "%f"} {
		if strings.Contains(format, d) {
			return true
		}
	}
	return false
}

// timeFormat is a parsed strftime pattern usable for parsing and printing.
type timeFormat struct {
	raw    string
	layout string
}

func newTimeFormat(field, format string) (timeFormat, error) {
	l, err := layout(format)
	if err != nil {
		return timeFormat{}, fieldErr(field, "%v", err)
	}
	return timeFormat{raw: format, layout: l}, nil
}

func (f timeFormat) parse(field, value string) (time.Time, error) {
	t, err := time.Parse(f.layout, value)
	if err != nil {
		return time.Time{}, fieldErr(field, "%q does not match format %q", value, f.raw)
	}
	return t, nil
}

func (f timeFormat) format(t time.Time) string {
	return t.Format(f.layout)
}
