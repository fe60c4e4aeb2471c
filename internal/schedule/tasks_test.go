package schedule

import (
	"strings"
	"testing"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"07:30", 450, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
		{"08:00extra", 0, true},
		{"8:0 pm", 0, true},
		{"08:00:00", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBuildTasks(t *testing.T) {
	tasks, err := BuildTasks([]Entry{
		{Name: "water", TimeRange: "07:00-10:00", Type: "navigation", Target: "PlantA", Actions: []string{"water"}},
		{Name: "charge", Time: "12:30", Type: "navigation", Target: "Dock", Actions: []string{"charge"}},
	})
	if err != nil {
		t.Fatalf("build tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	if tasks[0].Index != 0 || tasks[1].Index != 1 {
		t.Error("declaration order must set the task index")
	}
	if tasks[0].Window == nil || tasks[0].At != nil {
		t.Error("first task should be a window task")
	}
	if tasks[1].At == nil || *tasks[1].At != 750 {
		t.Error("second task should trigger exactly at 12:30")
	}
}

func TestBuildTasks_MalformedEntriesFatal(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{"no trigger", Entry{Name: "x", Type: "navigation"}, "needs time or time_range"},
		{"both triggers", Entry{Name: "x", Time: "09:00", TimeRange: "09:00-10:00"}, "mutually exclusive"},
		{"bad time", Entry{Name: "x", Time: "25:00"}, "invalid time"},
		{"bad range", Entry{Name: "x", TimeRange: "09:00"}, "invalid time_range"},
		{"empty window", Entry{Name: "x", TimeRange: "09:00-09:00"}, "empty window"},
	}
	for _, tt := range tests {
		_, err := BuildTasks([]Entry{tt.entry})
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.want)
		}
	}
}

func TestBuildTasks_UnnamedEntriesGetPositionalNames(t *testing.T) {
	tasks, err := BuildTasks([]Entry{
		{Time: "09:00", Type: "maintenance", Actions: []string{"system_check"}},
	})
	if err != nil {
		t.Fatalf("build tasks: %v", err)
	}
	if tasks[0].Name != "task_0" {
		t.Errorf("name = %q, want task_0", tasks[0].Name)
	}
}
