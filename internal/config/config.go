// Package config loads and validates the solard configuration file.
// Validation failures are fatal at startup: a broken schedule or runner
// table must never reach the running system.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/me/solard/internal/schedule"
	"github.com/me/solard/internal/trigger"
	"github.com/me/solard/pkg/model"
)

// ErrDuplicateRunner marks two runner entries sharing a key.
var ErrDuplicateRunner = errors.New("duplicate runner key")

// Duration is a time.Duration that unmarshals from YAML strings like "5s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// AppConfig holds the process-wide settings.
type AppConfig struct {
	Production bool `yaml:"production"`

	// Battery safety envelope.
	MinBatteryThreshold float64  `yaml:"min_battery_threshold"`
	MaxDistanceFactor   float64  `yaml:"max_distance_factor"`
	TotalRange          float64  `yaml:"total_range"`
	BatteryGrace        Duration `yaml:"battery_grace"`

	// Control loop and shutdown.
	MainLoopInterval Duration `yaml:"main_loop_interval"`
	ShutdownTimeout  Duration `yaml:"shutdown_timeout"`

	// Collaborator surfaces.
	APIAddr string `yaml:"api_addr"`
	DBPath  string `yaml:"db_path"`

	// Logging.
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Runner behaviors. Continuous runners cycle on their interval; scheduled
// runners cycle only when the wall clock matches; triggered runners cycle
// only while their condition holds.
const (
	BehaviorContinuous = "continuous"
	BehaviorScheduled  = "scheduled"
	BehaviorTriggered  = "triggered"
)

// RunnerConfig is one entry of the ordered runner table. The list form
// preserves declaration order for deterministic start ordering and makes
// duplicate keys representable (and rejectable).
type RunnerConfig struct {
	Key      string           `yaml:"key"`
	Type     model.RunnerType `yaml:"type"`
	Label    string           `yaml:"label"`
	Enabled  *bool            `yaml:"enabled"`
	Interval Duration         `yaml:"interval"`
	Behavior string           `yaml:"behavior"`

	// Behavior parameters.
	Trigger      string `yaml:"trigger,omitempty"`       // goja condition for triggered runners
	ScheduleTime string `yaml:"schedule_time,omitempty"` // HH:MM for scheduled runners

	// Health policy.
	MaxErrors int `yaml:"max_errors"`

	// Type-specific knobs; opaque to the runner framework.
	LowPowerThreshold  float64 `yaml:"low_power_threshold,omitempty"`
	HighPowerThreshold float64 `yaml:"high_power_threshold,omitempty"`
	FullVoltage        float64 `yaml:"full_voltage,omitempty"`
	EmptyVoltage       float64 `yaml:"empty_voltage,omitempty"`
	OutputDir          string  `yaml:"output_dir,omitempty"`
	Message            string  `yaml:"message,omitempty"`
}

// IsEnabled reports whether the entry should be instantiated. Entries
// default to enabled; disabled entries cost nothing and never appear in
// status reports.
func (r RunnerConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// DisplayLabel returns the human label, falling back to the key.
func (r RunnerConfig) DisplayLabel() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Key
}

// Config is the full validated configuration.
type Config struct {
	Application AppConfig                 `yaml:"application"`
	Runners     []RunnerConfig            `yaml:"runners"`
	Locations   map[string]model.Position `yaml:"locations"`
	Schedule    []schedule.Entry          `yaml:"schedule"`
}

// Default returns the configuration defaults applied before the file is
// merged in.
func Default() Config {
	return Config{
		Application: AppConfig{
			MinBatteryThreshold: 20.0,
			MaxDistanceFactor:   0.5,
			TotalRange:          100.0,
			BatteryGrace:        Duration(2 * time.Minute),
			MainLoopInterval:    Duration(time.Second),
			ShutdownTimeout:     Duration(5 * time.Second),
			APIAddr:             ":8080",
			LogLevel:            "info",
			LogFormat:           "text",
		},
	}
}

// Load reads, decodes, and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML configuration.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Runners {
		r := &c.Runners[i]
		if r.Interval == 0 {
			r.Interval = Duration(time.Second)
		}
		if r.Behavior == "" {
			r.Behavior = BehaviorContinuous
		}
		if r.MaxErrors == 0 {
			r.MaxErrors = 3
		}
		if r.Type == model.RunnerTypeUPS && r.FullVoltage == 0 && r.EmptyVoltage == 0 {
			// 2S pack defaults matching the stock UPS board.
			r.FullVoltage = 8.4
			r.EmptyVoltage = 6.0
		}
	}
}

// Validate checks the whole configuration. Every problem found here is a
// configuration error and fatal before any runner starts.
func (c *Config) Validate() error {
	app := c.Application
	if app.MinBatteryThreshold < 0 || app.MinBatteryThreshold > 100 {
		return fmt.Errorf("application: min_battery_threshold %v outside [0,100]", app.MinBatteryThreshold)
	}
	if app.MaxDistanceFactor <= 0 {
		return fmt.Errorf("application: max_distance_factor must be positive")
	}
	if app.TotalRange <= 0 {
		return fmt.Errorf("application: total_range must be positive")
	}
	if app.MainLoopInterval.Std() <= 0 {
		return fmt.Errorf("application: main_loop_interval must be positive")
	}
	if app.ShutdownTimeout.Std() <= 0 {
		return fmt.Errorf("application: shutdown_timeout must be positive")
	}

	seen := make(map[string]bool, len(c.Runners))
	for _, r := range c.Runners {
		if r.Key == "" {
			return fmt.Errorf("runner entry without a key")
		}
		if seen[r.Key] {
			return fmt.Errorf("%w: %q", ErrDuplicateRunner, r.Key)
		}
		seen[r.Key] = true

		if !r.Type.IsKnown() {
			return fmt.Errorf("runner %q: unknown type %q", r.Key, r.Type)
		}
		if r.Interval.Std() <= 0 {
			return fmt.Errorf("runner %q: interval must be positive", r.Key)
		}
		if r.Type == model.RunnerTypeUPS && r.FullVoltage <= r.EmptyVoltage {
			return fmt.Errorf("runner %q: full_voltage %v must exceed empty_voltage %v",
				r.Key, r.FullVoltage, r.EmptyVoltage)
		}

		switch r.Behavior {
		case BehaviorContinuous:
		case BehaviorScheduled:
			if _, err := schedule.ParseClock(r.ScheduleTime); err != nil {
				return fmt.Errorf("runner %q: schedule_time: %w", r.Key, err)
			}
			// The gate is sampled once per work-cycle tick; a coarser
			// interval could step over the scheduled minute entirely.
			if r.Interval.Std() > time.Minute {
				return fmt.Errorf("runner %q: scheduled interval %v cannot exceed one minute",
					r.Key, r.Interval.Std())
			}
		case BehaviorTriggered:
			if err := trigger.Check(r.Trigger); err != nil {
				return fmt.Errorf("runner %q: %w", r.Key, err)
			}
		default:
			return fmt.Errorf("runner %q: unknown behavior %q", r.Key, r.Behavior)
		}
	}

	if len(c.Locations) > 0 || len(c.Schedule) > 0 {
		if _, ok := c.Locations[model.DockName]; !ok {
			return fmt.Errorf("locations: missing %q", model.DockName)
		}
	}
	for _, e := range c.Schedule {
		if e.Target == "" {
			continue
		}
		if _, ok := c.Locations[e.Target]; !ok {
			return fmt.Errorf("schedule entry %q: unknown target %q", e.Name, e.Target)
		}
	}
	// Trigger-time parsing problems surface here rather than at first tick.
	if _, err := schedule.BuildTasks(c.Schedule); err != nil {
		return err
	}

	return nil
}
