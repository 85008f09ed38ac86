// Package recovery reconstructs a structured day-by-day itinerary from
// free-form assistant prose. It is a safety net for turns where the
// structured capture step was skipped, never the primary path: anything it
// cannot read is silently left alone.
package recovery

import (
	"regexp"
	"strings"
	"time"

	statex "github.com/wanderplan/wanderplan/agent/state"
)

var (
	// The day number is mandatory so prose like "Day trip to Sintra" cannot
	// pass as a header.
	dayHeaderPattern = regexp.MustCompile(`(?i)^\s*(?:[-*•]\s*)?(?:#+\s*)?(?:\*\*)?\s*day\s*(\d+)\s*(?:\(([^)]*)\))?\s*(?:\*\*)?\s*:?\s*(.*)$`)
	segmentPattern   = regexp.MustCompile(`(?i)^\s*(?:[-*•]\s*)?(?:\*\*)?\s*(morning|afternoon|evening)\s*(?:\*\*)?\s*:\s*(.*)$`)
	bulletPattern    = regexp.MustCompile(`^\s*[-*•]\s+(.+)$`)
)

// LooksLikeItinerary reports whether the text carries itinerary-shaped
// markers: a day header followed eventually by a segment header. This is the
// cheap gate the pipeline checks before running Parse.
func LooksLikeItinerary(text string) bool {
	sawDay := false
	for _, line := range strings.Split(text, "\n") {
		if m := dayHeaderPattern.FindStringSubmatch(line); m != nil {
			sawDay = true
			// A day header may carry its first segment inline.
			if segmentPattern.MatchString(strings.TrimSpace(m[3])) {
				return true
			}
			continue
		}
		if sawDay && segmentPattern.MatchString(line) {
			return true
		}
	}
	return false
}

// Parse scans the text line by line and rebuilds the day sequence. A new day
// header flushes the previous day; segment headers switch the active segment;
// bulleted lines are appended to it. Days whose three segments are all empty
// are discarded, guarding against false-positive headers. Parsing the same
// text twice yields the same days.
func Parse(text string) []statex.Day {
	var (
		days    []statex.Day
		current *statex.Day
		segment *[]string
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Normalize()
		if !current.Empty() {
			days = append(days, *current)
		}
		current = nil
		segment = nil
	}

	var handleLine func(line string)
	handleLine = func(line string) {
		if m := dayHeaderPattern.FindStringSubmatch(line); m != nil {
			flush()
			day := statex.Day{Day: parseOrdinal(m[1])}
			if date := parseISODate(m[2]); date != "" {
				day.Date = date
			}
			day.Normalize()
			current = &day
			// The remainder of the header line may hold the first segment.
			if rest := strings.TrimSpace(m[3]); rest != "" {
				handleLine(rest)
			}
			return
		}

		if current == nil {
			return
		}

		if m := segmentPattern.FindStringSubmatch(line); m != nil {
			switch strings.ToLower(m[1]) {
			case "morning":
				segment = &current.Morning
			case "afternoon":
				segment = &current.Afternoon
			case "evening":
				segment = &current.Evening
			}
			if rest := strings.TrimSpace(m[2]); rest != "" && segment != nil {
				*segment = append(*segment, rest)
			}
			return
		}

		if segment == nil {
			return
		}
		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			if activity := strings.TrimSpace(m[1]); activity != "" {
				*segment = append(*segment, activity)
			}
		}
	}

	for _, line := range strings.Split(text, "\n") {
		handleLine(line)
	}
	flush()

	return days
}

func parseOrdinal(raw string) int {
	n := 0
	for _, ch := range raw {
		if ch < '0' || ch > '9' {
			return 0
		}
		n = n*10 + int(ch-'0')
	}
	return n
}

// parseISODate keeps only unambiguous YYYY-MM-DD parentheticals; anything
// else ("May 3rd", "Tuesday") is dropped rather than guessed at.
func parseISODate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if _, err := time.Parse(statex.DateLayout, trimmed); err != nil {
		return ""
	}
	return trimmed
}
