// ABOUTME: Bidirectional mapping between wire BusinessHour records and the 7-day Week
// ABOUTME: Fills missing days with closed placeholders and normalizes HH:MM:SS <-> HH:MM

package schedule

import (
	"errors"
	"time"
)

// DaysPerWeek is the number of entries in every Week.
const DaysPerWeek = 7

// Placeholder times used for days the API did not return or returned without times.
const (
	DefaultOpenTime  = "09:00"
	DefaultCloseTime = "18:00"
)

// DayNames are the display names indexed by day of week (0 = Monday).
var DayNames = [DaysPerWeek]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// Validation errors reported in DaySchedule.Error.
var (
	ErrInvalidOpenTime  = errors.New("opening time must be HH:MM")
	ErrInvalidCloseTime = errors.New("closing time must be HH:MM")
	ErrCloseBeforeOpen  = errors.New("closing time must be after opening time")
)

// BusinessHour is one day of business hours as the API sends and accepts it.
type BusinessHour struct {
	ID        *int64  `json:"id,omitempty"`
	DayOfWeek int     `json:"day_of_week"`
	OpenTime  *string `json:"open_time"`
	CloseTime *string `json:"close_time"`
	IsClosed  bool    `json:"is_closed"`
}

// DaySchedule is one day of business hours in the form operators edit.
type DaySchedule struct {
	Name      string
	DayOfWeek int
	IsOpen    bool
	OpenTime  string // HH:MM
	CloseTime string // HH:MM
	Error     string // set by Validate, empty when the day is valid
}

// Week is a full schedule, indexed by day of week.
type Week [DaysPerWeek]DaySchedule

// ToSchedule builds a Week from wire records. Input order does not matter; for each day the
// first record with a matching day_of_week is used and records outside 0..6 are ignored.
func ToSchedule(hours []BusinessHour) Week {
	var week Week
	for day := 0; day < DaysPerWeek; day++ {
		ds := DaySchedule{
			Name:      DayNames[day],
			DayOfWeek: day,
			OpenTime:  DefaultOpenTime,
			CloseTime: DefaultCloseTime,
		}
		if h, ok := findDay(hours, day); ok {
			ds.IsOpen = !h.IsClosed
			if h.OpenTime != nil {
				ds.OpenTime = toMinutes(*h.OpenTime)
			}
			if h.CloseTime != nil {
				ds.CloseTime = toMinutes(*h.CloseTime)
			}
		}
		week[day] = ds
	}
	return week
}

// ToWire converts a Week into the seven records the API expects, in day order. Closed days
// carry null times; open days carry HH:MM:SS times.
func ToWire(week Week) []BusinessHour {
	hours := make([]BusinessHour, 0, DaysPerWeek)
	for day, ds := range week {
		h := BusinessHour{
			DayOfWeek: day,
			IsClosed:  !ds.IsOpen,
		}
		if ds.IsOpen {
			h.OpenTime = ptr(ds.OpenTime + ":00")
			h.CloseTime = ptr(ds.CloseTime + ":00")
		}
		hours = append(hours, h)
	}
	return hours
}

// Validate checks the times of every open day and records problems in DaySchedule.Error.
// Closed days are always valid. Returns true when no day has an error.
func Validate(week *Week) bool {
	ok := true
	for i := range week {
		week[i].Error = ""
		if !week[i].IsOpen {
			continue
		}
		if err := validateDay(week[i]); err != nil {
			week[i].Error = err.Error()
			ok = false
		}
	}
	return ok
}

func validateDay(ds DaySchedule) error {
	open, ok := parseClock(ds.OpenTime)
	if !ok {
		return ErrInvalidOpenTime
	}
	closeAt, ok := parseClock(ds.CloseTime)
	if !ok {
		return ErrInvalidCloseTime
	}
	if !closeAt.After(open) {
		return ErrCloseBeforeOpen
	}
	return nil
}

// parseClock parses a zero-padded HH:MM time. The "15" layout alone also accepts "9:00".
func parseClock(s string) (time.Time, bool) {
	if len(s) != 5 || s[2] != ':' {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", s)
	return t, err == nil
}

func findDay(hours []BusinessHour, day int) (BusinessHour, bool) {
	for _, h := range hours {
		if h.DayOfWeek == day {
			return h, true
		}
	}
	return BusinessHour{}, false
}

// toMinutes drops the seconds part of an HH:MM:SS value.
func toMinutes(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}

func ptr(s string) *string { return &s }
