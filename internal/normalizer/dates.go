package normalizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/hire-engine/internal/model"
)

const (
	minYear = 1950
	maxYear = 2100
)

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

const datePattern = `\b(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4}|\d{1,2}/\d{4}|\d{4}[-/]\d{1,2}|\d{4})\b`

var (
	rangeRe = regexp.MustCompile(`(?i)(` + datePattern + `)\s*(?:-|–|—|to|until|till)\s*(` +
		datePattern + `|present|current|now|today|[^\s|,;()]+)`)
	singleDateRe = regexp.MustCompile(`(?i)` + datePattern)
	endMarkers   = map[string]struct{}{"present": {}, "current": {}, "now": {}, "today": {}}
)

// parseDate converts a single date expression to a (year, month|0) pair.
func parseDate(raw string) (model.YearMonth, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return model.YearMonth{}, false
	}

	var year, month int
	var err error

	switch fields := strings.Fields(s); {
	case len(fields) == 2:
		name := strings.TrimSuffix(fields[0], ".")
		if len(name) < 3 {
			return model.YearMonth{}, false
		}
		m, ok := monthNames[name[:3]]
		if !ok {
			return model.YearMonth{}, false
		}
		month = m
		if year, err = strconv.Atoi(fields[1]); err != nil {
			return model.YearMonth{}, false
		}
	case strings.Contains(s, "/") || strings.Contains(s, "-"):
		parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
		if len(parts) != 2 {
			return model.YearMonth{}, false
		}
		a, errA := strconv.Atoi(parts[0])
		b, errB := strconv.Atoi(parts[1])
		if errA != nil || errB != nil {
			return model.YearMonth{}, false
		}
		if len(parts[0]) == 4 {
			year, month = a, b
		} else {
			month, year = a, b
		}
	default:
		if year, err = strconv.Atoi(s); err != nil {
			return model.YearMonth{}, false
		}
	}

	if year < minYear || year > maxYear || month < 0 || month > 12 {
		return model.YearMonth{}, false
	}
	return model.YearMonth{Year: year, Month: month}, true
}

// dateRange is a period found in a line of text.
type dateRange struct {
	start   *model.YearMonth
	end     *model.YearMonth
	present bool
	// raw is the matched text, rest the line without it.
	raw  string
	rest string
	note string
}

// findRange extracts the first date range of a line. A single date is treated as a
// range with an unknown end. Unparsable ends degrade to a nil end with a note.
func findRange(line string) (*dateRange, bool) {
	if loc := rangeRe.FindStringSubmatchIndex(line); loc != nil {
		r := &dateRange{
			raw:  line[loc[0]:loc[1]],
			rest: line[:loc[0]] + line[loc[1]:],
		}
		startRaw := line[loc[2]:loc[3]]
		endRaw := line[loc[4]:loc[5]]

		start, ok := parseDate(startRaw)
		if !ok {
			return nil, false
		}
		r.start = &start

		if _, ok := endMarkers[strings.ToLower(endRaw)]; ok {
			r.present = true
		} else if end, ok := parseDate(endRaw); ok {
			r.end = &end
		} else {
			r.note = "unparsable end date " + strconv.Quote(endRaw) + " in " + strconv.Quote(strings.TrimSpace(line))
		}
		return r, true
	}

	if loc := singleDateRe.FindStringIndex(line); loc != nil {
		raw := line[loc[0]:loc[1]]
		start, ok := parseDate(raw)
		if !ok {
			return nil, false
		}
		return &dateRange{
			start: &start,
			raw:   raw,
			rest:  line[:loc[0]] + line[loc[1]:],
			note:  "no end date in " + strconv.Quote(strings.TrimSpace(line)),
		}, true
	}

	return nil, false
}
