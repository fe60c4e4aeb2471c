// Package schedule holds the daily task list and decides, once per control
// tick, which action the robot should perform: the schedule's own pick, or
// the dock-directed override when the battery safety envelope demands it.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/me/solard/pkg/model"
)

// Entry is one raw schedule item as it appears in the configuration file.
// Exactly one of Time and TimeRange must be set.
type Entry struct {
	Name      string   `yaml:"name"`
	Time      string   `yaml:"time,omitempty"`       // "HH:MM" exact trigger
	TimeRange string   `yaml:"time_range,omitempty"` // "HH:MM-HH:MM", may wrap midnight
	Type      string   `yaml:"type"`
	Target    string   `yaml:"target,omitempty"`
	Actions   []string `yaml:"actions"`
}

// ParseClock converts "HH:MM" to a minute of the day. Parsing is strict:
// trailing text and out-of-range fields are errors.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// BuildTasks converts raw entries into the immutable, ordered task list.
// Declaration order becomes the task index and the tie-break order.
// Any malformed entry is a fatal configuration error.
func BuildTasks(entries []Entry) ([]model.ScheduleTask, error) {
	tasks := make([]model.ScheduleTask, 0, len(entries))
	for i, e := range entries {
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("task_%d", i)
		}

		task := model.ScheduleTask{
			Name:    name,
			Kind:    e.Type,
			Target:  e.Target,
			Actions: append([]string(nil), e.Actions...),
			Index:   i,
		}

		switch {
		case e.Time != "" && e.TimeRange != "":
			return nil, fmt.Errorf("schedule entry %q: time and time_range are mutually exclusive", name)
		case e.Time != "":
			at, err := ParseClock(e.Time)
			if err != nil {
				return nil, fmt.Errorf("schedule entry %q: %w", name, err)
			}
			task.At = &at
		case e.TimeRange != "":
			w, err := parseWindow(e.TimeRange)
			if err != nil {
				return nil, fmt.Errorf("schedule entry %q: %w", name, err)
			}
			task.Window = &w
		default:
			return nil, fmt.Errorf("schedule entry %q: needs time or time_range", name)
		}

		tasks = append(tasks, task)
	}
	return tasks, nil
}

func parseWindow(s string) (model.TimeWindow, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return model.TimeWindow{}, fmt.Errorf("invalid time_range %q: want HH:MM-HH:MM", s)
	}
	start, err := ParseClock(strings.TrimSpace(parts[0]))
	if err != nil {
		return model.TimeWindow{}, err
	}
	end, err := ParseClock(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.TimeWindow{}, err
	}
	if start == end {
		return model.TimeWindow{}, fmt.Errorf("invalid time_range %q: empty window", s)
	}
	return model.TimeWindow{Start: start, End: end}, nil
}
