package rss

import (
	"strconv"
	"strings"
	"time"
)

var monthNames = []string{
	"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec",
	"january", "february", "march", "april", "may", "june", "july", "august",
	"september", "october", "november", "december",
}

var dayNames = map[string]bool{
	"mon": true, "tue": true, "wed": true, "thu": true, "fri": true, "sat": true, "sun": true,
}

// Zone offsets in +hhmm form, RFC 822 section 5 plus UTC.
var zoneOffsets = map[string]int{
	"UT": 0, "UTC": 0, "GMT": 0, "Z": 0,
	"AST": -400, "ADT": -300,
	"EST": -500, "EDT": -400,
	"CST": -600, "CDT": -500,
	"MST": -700, "MDT": -600,
	"PST": -800, "PDT": -700,
}

// ParsePubDate parses RFC 822/2822 dates as found in real feeds, including
// the obsolete forms: optional weekday, swapped day and month, full month
// names, two-digit years, RFC 850 "dd-Mon-yy", missing seconds, "hh.mm"
// times and zones glued to the time. Unknown zone names are accepted and the
// time is then returned in UTC. The result keeps the zone it was written in,
// so Year() is the year as written.
func ParsePubDate(s string) (time.Time, bool) {
	data := strings.Fields(s)
	if len(data) == 0 {
		return time.Time{}, false
	}
	if strings.HasSuffix(data[0], ",") || dayNames[strings.ToLower(data[0])] {
		data = data[1:]
	} else if i := strings.LastIndex(data[0], ","); i >= 0 {
		data[0] = data[0][i+1:]
	}
	if len(data) == 3 {
		if parts := strings.Split(data[0], "-"); len(parts) == 3 {
			data = append(parts, data[1:]...)
		}
	}
	if len(data) == 4 {
		last := data[3]
		i := strings.Index(last, "+")
		if i == -1 {
			i = strings.Index(last, "-")
		}
		if i > 0 {
			data = append(data[:3:3], last[:i], last[i:])
		} else {
			data = append(data, "")
		}
	}
	if len(data) < 5 {
		return time.Time{}, false
	}
	dd, mm, yy, tm, tz := data[0], data[1], data[2], data[3], data[4]
	if dd == "" || mm == "" || yy == "" {
		return time.Time{}, false
	}

	month := monthIndex(strings.ToLower(mm))
	if month < 0 {
		dd, mm = mm, strings.ToLower(dd)
		if month = monthIndex(mm); month < 0 {
			return time.Time{}, false
		}
	}
	month = month%12 + 1

	dd = strings.TrimSuffix(dd, ",")
	if strings.Index(yy, ":") > 0 {
		yy, tm = tm, yy
	}
	yy = strings.TrimSuffix(yy, ",")
	if yy == "" {
		return time.Time{}, false
	}
	if yy[0] < '0' || yy[0] > '9' {
		yy, tz = tz, yy
	}
	tm = strings.TrimSuffix(tm, ",")

	hh, mi, ss, ok := splitClock(tm)
	if !ok {
		return time.Time{}, false
	}
	var nums [5]int
	for i, f := range []string{yy, dd, hh, mi, ss} {
		n, err := strconv.Atoi(f)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	year, day, hour, minute, sec := nums[0], nums[1], nums[2], nums[3], nums[4]
	if year < 100 {
		if year > 68 {
			year += 1900
		} else {
			year += 2000
		}
	}

	loc, ok := zone(tz)
	if !ok {
		return time.Time{}, false
	}
	if year < 1 || year > 9999 ||
		day < 1 || day > daysIn(year, time.Month(month)) ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 || sec < 0 || sec > 59 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc), true
}

func monthIndex(mm string) int {
	for i, name := range monthNames {
		if name == mm {
			return i
		}
	}
	return -1
}

func splitClock(tm string) (hh, mi, ss string, ok bool) {
	parts := strings.Split(tm, ":")
	if len(parts) == 1 && strings.Contains(tm, ".") {
		parts = strings.Split(tm, ".")
	} else if len(parts) == 1 {
		return "", "", "", false
	}
	switch len(parts) {
	case 2:
		return parts[0], parts[1], "0", true
	case 3:
		return parts[0], parts[1], parts[2], true
	}
	return "", "", "", false
}

// zone resolves a zone token. Unrecognized tokens map to UTC; a numeric
// offset of a day or more is invalid.
func zone(tz string) (*time.Location, bool) {
	tz = strings.ToUpper(tz)
	off, known := zoneOffsets[tz]
	if !known {
		n, err := strconv.Atoi(tz)
		if err != nil {
			return time.UTC, true
		}
		off = n
	}
	if off == 0 {
		return time.UTC, true
	}
	sign := 1
	if off < 0 {
		sign, off = -1, -off
	}
	secs := sign * ((off/100)*3600 + (off%100)*60)
	if secs <= -86400 || secs >= 86400 {
		return nil, false
	}
	return time.FixedZone(tz, secs), true
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
