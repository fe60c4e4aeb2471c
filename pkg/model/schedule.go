package model

import (
	"fmt"
	"time"
)

// TimeWindow is a half-open [Start, End) range of minutes of the day.
// When End < Start the window wraps past midnight: 22:00-04:00 covers
// 23:30 and 02:00 but not 12:00, and never 04:00 itself.
type TimeWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether the minute-of-day m falls inside the window.
func (w TimeWindow) Contains(m int) bool {
	if w.End < w.Start {
		return m >= w.Start || m < w.End
	}
	return m >= w.Start && m < w.End
}

// String renders the window as "HH:MM-HH:MM".
func (w TimeWindow) String() string {
	return fmt.Sprintf("%s-%s", FormatMinute(w.Start), FormatMinute(w.End))
}

// ScheduleTask is one entry of the ordered daily task list. Exactly one of
// At and Window is set. Tasks are immutable once loaded; Index is the
// declaration position and the authoritative tie-break among window matches.
type ScheduleTask struct {
	Name    string      `json:"name"`
	Kind    string      `json:"kind"`
	At      *int        `json:"at,omitempty"`     // minute of day, exact trigger
	Window  *TimeWindow `json:"window,omitempty"` // half-open range trigger
	Target  string      `json:"target,omitempty"`
	Actions []string    `json:"actions"`
	Index   int         `json:"index"`
}

// Exact reports whether the task has an exact-time trigger.
func (t ScheduleTask) Exact() bool {
	return t.At != nil
}

// MatchesMinute reports whether the task is eligible at minute-of-day m.
// Exact tasks match only at their precise minute.
func (t ScheduleTask) MatchesMinute(m int) bool {
	if t.At != nil {
		return *t.At == m
	}
	if t.Window != nil {
		return t.Window.Contains(m)
	}
	return false
}

// MinuteOfDay converts a wall-clock time to its minute of the day.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FormatMinute renders a minute of the day as "HH:MM".
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// SelectedAction is the schedule engine's output for one tick: the target
// to approach and the actions to perform there. Override marks a pick the
// safety envelope forced in place of the schedule's own choice.
type SelectedAction struct {
	Target   string    `json:"target,omitempty"`
	Position *Position `json:"position,omitempty"`
	Actions  []string  `json:"actions,omitempty"`
	Override bool      `json:"override"`
	Reason   string    `json:"reason,omitempty"`
	TaskName string    `json:"task_name,omitempty"`
	Idle     bool      `json:"idle"`
	TickedAt time.Time `json:"ticked_at"`
}
