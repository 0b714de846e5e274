// Package recur expands compact recurrence rules ("every Friday", "last
// Monday of the month", "the 2nd") into concrete DD/MM/YYYY dates within a
// rolling 28-day window.
package recur

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// WindowDays is the expansion horizon. No rule ever yields a date more than
// 28 days from today.
const WindowDays = 28

// Rule is a recurrence rule as extracted from free-text scheduling
// instructions. Pos holds either an ordinal week keyword ("1st", "last") or
// specific day-of-month digits ("14th"); Proof is the instruction text the
// rule was derived from.
type Rule struct {
	Day          string `json:"day"`
	Freq         string `json:"freq"`
	Pos          string `json:"pos"`
	RawTimeStart string `json:"rawTimeStart"`
	RawTimeEnd   string `json:"rawTimeEnd"`
	Venue        string `json:"venue"`
	Proof        string `json:"proof"`
}

// Valid reports whether the rule carries the fields expansion depends on.
// Extraction output failing this check is dropped rather than expanded.
func (r Rule) Valid() bool {
	return strings.TrimSpace(r.Freq) != "" && strings.TrimSpace(r.Day) != ""
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var nonDigits = regexp.MustCompile(`\D`)

// Expand returns the concrete dates the rule produces within WindowDays of
// today, earliest first, formatted DD/MM/YYYY. An unknown weekday name
// yields no dates. A single-occurrence rule yields at most one date and
// expansion stops at the first match.
//
// A rule is classified single-occurrence when the numeric portion of Pos
// exceeds 5 (impossible as an ordinal week count), or when that number used
// as a day of the current month lands on the rule's weekday, meaning Pos
// names a calendar day rather than an ordinal week.
func Expand(r Rule, today time.Time) []string {
	target, ok := weekdayNames[strings.ToLower(strings.TrimSpace(r.Day))]
	if !ok {
		return nil
	}

	pos := strings.ToLower(r.Pos)
	posNum, _ := strconv.Atoi(nonDigits.ReplaceAllString(pos, ""))

	single := false
	if posNum > 5 {
		single = true
	} else if posNum > 0 {
		probe := time.Date(today.Year(), today.Month(), posNum, 0, 0, 0, 0, today.Location())
		if probe.Weekday() == target {
			single = true
		}
	}

	var dates []string
	for i := 0; i < WindowDays; i++ {
		d := today.AddDate(0, 0, i)
		if d.Weekday() != target {
			continue
		}

		match := false
		switch strings.ToLower(strings.TrimSpace(r.Freq)) {
		case "weekly":
			if single {
				match = d.Day() == posNum
			} else {
				match = true
			}
		case "monthly":
			if single {
				match = d.Day() == posNum
			} else {
				weekNum := (d.Day() + 6) / 7
				isLast := d.AddDate(0, 0, 7).Month() != d.Month()
				switch {
				case strings.Contains(pos, "last") && isLast:
					match = true
				case strings.Contains(pos, "1st") && weekNum == 1:
					match = true
				case strings.Contains(pos, "2nd") && weekNum == 2:
					match = true
				case strings.Contains(pos, "3rd") && weekNum == 3:
					match = true
				case strings.Contains(pos, "4th") && weekNum == 4:
					match = true
				}
			}
		}

		if match {
			dates = append(dates, d.Format("02/01/2006"))
			if single {
				return dates
			}
		}
	}
	return dates
}
