package appointment

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	HourLayout = "15:04"
)

var ErrInvalidSlot = errors.New("invalid appointment slot")

// SlotError carries the message shown to the visitor; it matches ErrInvalidSlot with errors.Is
type SlotError struct {
	msg string
}

func (e *SlotError) Error() string { return e.msg }
func (e *SlotError) Unwrap() error { return ErrInvalidSlot }

// Rules is the business window: weekdays, on the hour, from FirstHour to LastHour inclusive,
// in the given location
type Rules struct {
	Location  *time.Location
	FirstHour int
	LastHour  int
}

type Slot struct {
	Date  string
	Hour  string
	Start time.Time
}

// ParseSlot checks date (YYYY-MM-DD) and hour (HH:MM) against the rules.
// The date must be a weekday after today, the hour on the hour inside the window.
func ParseSlot(date, hour string, now time.Time, rules Rules) (Slot, error) {
	loc := rules.location()

	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return Slot{}, &SlotError{msg: "La fecha no es válida."}
	}

	clock, err := time.Parse(HourLayout, hour)
	if err != nil {
		return Slot{}, &SlotError{msg: "La hora no es válida."}
	}

	today := startOfDay(now.In(loc))
	if !day.After(today) {
		return Slot{}, &SlotError{msg: "La fecha debe ser posterior a hoy."}
	}
	if isWeekend(day) {
		return Slot{}, &SlotError{msg: "Solo se pueden agendar citas de lunes a viernes."}
	}
	if clock.Minute() != 0 || clock.Hour() < rules.FirstHour || clock.Hour() > rules.LastHour {
		return Slot{}, &SlotError{msg: fmt.Sprintf(
			"El horario debe ser en punto, entre las %02d:00 y las %02d:00.",
			rules.FirstHour, rules.LastHour,
		)}
	}

	return Slot{
		Date:  day.Format(DateLayout),
		Hour:  clock.Format(HourLayout),
		Start: time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), 0, 0, 0, loc),
	}, nil
}

// Hours lists the bookable hours of a day, for the form
func (r Rules) Hours() []string {
	hours := make([]string, 0, r.LastHour-r.FirstHour+1)
	for h := r.FirstHour; h <= r.LastHour; h++ {
		hours = append(hours, fmt.Sprintf("%02d:00", h))
	}
	return hours
}

// MinDate is the first bookable day after now
func (r Rules) MinDate(now time.Time) string {
	day := startOfDay(now.In(r.location())).AddDate(0, 0, 1)
	for isWeekend(day) {
		day = day.AddDate(0, 0, 1)
	}
	return day.Format(DateLayout)
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
