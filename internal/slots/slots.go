// Package slots is the fixed appointment catalog: six daily times on weekdays.
// Slots are generated on demand and never persisted.
package slots

import (
	"strconv"
	"strings"
	"time"

	"voicebooking/pkg/model"
)

const (
	formattedDateLayout = "Monday, January 02, 2006"
	spokenDateLayout    = "Monday, January 02"

	NoSlotsSentence = "I don't have any available slots at the moment."
)

type Slot struct {
	Date          string `json:"date"`
	DateFormatted string `json:"date_formatted"`
	Time          string `json:"time"`
	Label         string `json:"slot_name"`
}

type catalogTime struct {
	hhmm  string
	label string
}

var catalog = []catalogTime{
	{"09:00", "Morning - 9:00 AM"},
	{"10:00", "Morning - 10:00 AM"},
	{"11:00", "Morning - 11:00 AM"},
	{"14:00", "Afternoon - 2:00 PM"},
	{"15:00", "Afternoon - 3:00 PM"},
	{"16:00", "Afternoon - 4:00 PM"},
}

// Times returns the catalog times in "HH:MM" order.
func Times() []string {
	out := make([]string, len(catalog))
	for i, c := range catalog {
		out[i] = c.hhmm
	}
	return out
}

func LabelFor(hhmm string) (string, bool) {
	for _, c := range catalog {
		if c.hhmm == hhmm {
			return c.label, true
		}
	}
	return "", false
}

// Generate lists every slot from the day after reference through lookaheadDays, skipping weekends.
func Generate(reference time.Time, lookaheadDays int) []Slot {
	start := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, reference.Location())
	out := make([]Slot, 0, lookaheadDays*len(catalog))

	for offset := 1; offset <= lookaheadDays; offset++ {
		day := start.AddDate(0, 0, offset)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		date := day.Format(model.DateLayout)
		formatted := day.Format(formattedDateLayout)
		for _, c := range catalog {
			out = append(out, Slot{
				Date:          date,
				DateFormatted: formatted,
				Time:          c.hhmm,
				Label:         c.label,
			})
		}
	}
	return out
}

// NormalizeTime maps spoken or 24-hour forms ("9", "9am", "2 pm", "2:00", "14:00")
// to a catalog time. Bare hours 1 through 7 are read as afternoon.
func NormalizeTime(s string) (string, bool) {
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	s = strings.ReplaceAll(s, ".", "")
	if s == "" {
		return "", false
	}

	meridiem := ""
	for _, suffix := range []string{"am", "pm"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}

	hourPart, minutePart, hasMinutes := strings.Cut(s, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 23 {
		return "", false
	}
	if hasMinutes {
		minute, err := strconv.Atoi(minutePart)
		if err != nil || minute != 0 || len(minutePart) != 2 {
			return "", false
		}
	}

	switch meridiem {
	case "am":
		if hour == 12 {
			hour = 0
		} else if hour > 12 {
			return "", false
		}
	case "pm":
		if hour < 12 {
			hour += 12
		} else if hour > 12 {
			return "", false
		}
	default:
		if hour >= 1 && hour <= 7 {
			hour += 12
		}
	}

	hhmm := twoDigits(hour) + ":00"
	if _, ok := LabelFor(hhmm); !ok {
		return "", false
	}
	return hhmm, true
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func IsValidDate(date string) bool {
	_, err := time.Parse(model.DateLayout, date)
	return err == nil
}

// SpokenDate renders "2025-03-10" as "Monday, March 10". Unparseable input is returned unchanged.
func SpokenDate(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(spokenDateLayout)
}

// FormatForSpeech groups the first limit slots by day:
// "On Monday, March 10, 2025, I have Morning - 9:00 AM and Morning - 10:00 AM."
func FormatForSpeech(available []Slot, limit int) string {
	if len(available) == 0 {
		return NoSlotsSentence
	}
	if limit > 0 && len(available) > limit {
		available = available[:limit]
	}

	var days []string
	byDay := make(map[string][]string)
	for _, s := range available {
		if _, seen := byDay[s.DateFormatted]; !seen {
			days = append(days, s.DateFormatted)
		}
		byDay[s.DateFormatted] = append(byDay[s.DateFormatted], s.Label)
	}

	parts := make([]string, 0, len(days))
	for _, day := range days {
		parts = append(parts, "On "+day+", I have "+joinAnd(byDay[day]))
	}
	return strings.Join(parts, ". ") + "."
}

func joinAnd(items []string) string {
	if len(items) == 1 {
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
