package appointment

import (
	"fmt"
	"time"
)

// TurnClock maps the opaque turn index of a day to wall-clock time. Turns
// are fixed, non-overlapping buckets starting at the day opening.
type TurnClock struct {
	opening time.Duration
	length  time.Duration
	turns   int
	loc     *time.Location
}

func NewTurnClock(opening string, turnMinutes, turnsPerDay int, loc *time.Location) (*TurnClock, error) {
	t, err := time.Parse("15:04", opening)
	if err != nil {
		return nil, fmt.Errorf("turn clock: invalid opening %q: %w", opening, err)
	}
	if turnMinutes <= 0 || turnsPerDay <= 0 {
		return nil, fmt.Errorf("turn clock: turn length and count must be positive")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TurnClock{
		opening: time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute,
		length:  time.Duration(turnMinutes) * time.Minute,
		turns:   turnsPerDay,
		loc:     loc,
	}, nil
}

func (c *TurnClock) StartOf(date time.Time, turn int) time.Time {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, c.loc)
	return midnight.Add(c.opening + time.Duration(turn)*c.length)
}

func (c *TurnClock) Valid(turn int) bool {
	return turn >= 0 && turn < c.turns
}

func (c *TurnClock) TurnsPerDay() int {
	return c.turns
}

func (c *TurnClock) Location() *time.Location {
	return c.loc
}

// Today is the current calendar day in the clock's zone.
func (c *TurnClock) Today(now time.Time) time.Time {
	return Day(now.In(c.loc))
}
