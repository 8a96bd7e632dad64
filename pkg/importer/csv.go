package importer

import (
	"strconv"
	"strings"
	"time"
)

// isHeader reports whether a line is the optional CSV header. Matching is a
// case-insensitive prefix check on the first two column names.
func isHeader(line string) bool {
	return strings.HasPrefix(strings.ToLower(line), "date,venue")
}

// splitLine splits a CSV line on commas, except inside double quotes. Each
// field is trimmed of whitespace and stripped of surrounding quotes. This is
// deliberately not encoding/csv: the import format tolerates stray quotes
// mid-field and has no multi-line records.
func splitLine(line string) []string {
	fields := make([]string, 0, 8)
	var current strings.Builder
	inQuotes := false

	for _, char := range line {
		switch {
		case char == '"':
			inQuotes = !inQuotes
		case char == ',' && !inQuotes:
			fields = append(fields, cleanField(current.String()))
			current.Reset()
		default:
			current.WriteRune(char)
		}
	}
	fields = append(fields, cleanField(current.String()))
	return fields
}

func cleanField(field string) string {
	field = strings.TrimSpace(field)
	field = strings.TrimPrefix(field, `"`)
	field = strings.TrimSuffix(field, `"`)
	return field
}

// parseStrictDate parses the strict DD/MM/YYYY date and HH:MM time columns
// into a local wall-clock time. No timezone conversion happens.
func parseStrictDate(dateStr, timeStr string) (time.Time, bool) {
	dateParts := strings.Split(strings.TrimSpace(dateStr), "/")
	timeParts := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(dateParts) != 3 || len(timeParts) != 2 {
		return time.Time{}, false
	}

	day, errD := strconv.Atoi(dateParts[0])
	month, errM := strconv.Atoi(dateParts[1])
	year, errY := strconv.Atoi(dateParts[2])
	hours, errH := strconv.Atoi(timeParts[0])
	minutes, errMin := strconv.Atoi(timeParts[1])
	if errD != nil || errM != nil || errY != nil || errH != nil || errMin != nil {
		return time.Time{}, false
	}

	if day < 1 || day > 31 || month < 1 || month > 12 || year == 0 ||
		hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hours, minutes, 0, 0, time.Local), true
}
