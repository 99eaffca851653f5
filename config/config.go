// Package config loads the simulator's board and runnable table from YAML
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"tickrun/app"
	"tickrun/core"
)

// TaskBusy is a task that does nothing but burn its busy_ms
const TaskBusy = "busy"

var (
	ErrNoTasks        = errors.New("no tasks configured")
	ErrBadStartTime   = errors.New("clock start must be HH:MM:SS")
	ErrDuplicateName  = errors.New("task name used twice")
	ErrDuplicatePrio  = errors.New("task priority used twice")
	ErrUnknownTask    = errors.New("unknown task")
	ErrInvalidSetting = errors.New("invalid setting")
)

// Config describes one simulated board
type Config struct {
	ClockHz     uint32      `yaml:"clock_hz"`
	ReferenceHz uint32      `yaml:"reference_hz"`
	Speed       float64     `yaml:"speed"`
	Pins        PinConfig   `yaml:"pins"`
	Clock       ClockConfig `yaml:"clock"`
	Tasks       []Task      `yaml:"tasks"`
}

// PinConfig assigns simulated GPIO numbers
type PinConfig struct {
	Heartbeat core.GPIOPin `yaml:"heartbeat"`
	Red       core.GPIOPin `yaml:"red"`
	Yellow    core.GPIOPin `yaml:"yellow"`
	Green     core.GPIOPin `yaml:"green"`
	Switch    core.GPIOPin `yaml:"switch"`
	CtrlLED   core.GPIOPin `yaml:"ctrl_led"`
}

// ClockConfig sets the wall clock shown on the display
type ClockConfig struct {
	Start string `yaml:"start"`
}

// Task is one runnable table entry
type Task struct {
	Name         string `yaml:"name"`
	Priority     uint8  `yaml:"priority"`
	PeriodMs     uint32 `yaml:"period_ms"`
	FirstDelayMs uint32 `yaml:"first_delay_ms"`
	BusyMs       uint32 `yaml:"busy_ms"` // Extra time the callback takes
}

// Load parses a YAML configuration, fills in defaults and validates it
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads and parses a configuration file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills in missing values with the STM32F401 board settings
func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.ClockHz == 0 {
		cfg.ClockHz = def.ClockHz
	}
	if cfg.Speed == 0 {
		cfg.Speed = def.Speed
	}
	if cfg.Pins == (PinConfig{}) {
		cfg.Pins = def.Pins
	}
	if cfg.Clock.Start == "" {
		cfg.Clock.Start = def.Clock.Start
	}
	if len(cfg.Tasks) == 0 {
		cfg.Tasks = def.Tasks
	}
}

// Default returns the firmware's own table on a 16 MHz board
func Default() *Config {
	cfg := &Config{
		ClockHz: 16000000,
		Speed:   1,
		Pins: PinConfig{
			Heartbeat: 0,
			Red:       1,
			Yellow:    2,
			Green:     3,
			Switch:    4,
			CtrlLED:   5,
		},
		Clock: ClockConfig{Start: "15:00:00"},
	}
	for _, s := range app.DefaultSchedule {
		cfg.Tasks = append(cfg.Tasks, Task{
			Name:         s.Name,
			Priority:     s.Priority,
			PeriodMs:     s.PeriodMs,
			FirstDelayMs: s.FirstDelayMs,
		})
	}
	return cfg
}

// Validate checks the configuration for errors the scheduler would reject
// at boot, so they are reported with the task name
func (c *Config) Validate() error {
	if c.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive", ErrInvalidSetting)
	}
	if c.ClockHz < 1000000 {
		return fmt.Errorf("%w: clock_hz %d below 1 MHz", ErrInvalidSetting, c.ClockHz)
	}
	if _, _, _, err := c.StartTime(); err != nil {
		return err
	}
	if len(c.Tasks) == 0 {
		return ErrNoTasks
	}

	names := make(map[string]bool)
	prios := make(map[uint8]string)
	for i, task := range c.Tasks {
		if !knownTask(task.Name) {
			return fmt.Errorf("task %d: %w %q", i, ErrUnknownTask, task.Name)
		}
		if names[task.Name] {
			return fmt.Errorf("task %q: %w", task.Name, ErrDuplicateName)
		}
		names[task.Name] = true

		if other, ok := prios[task.Priority]; ok {
			return fmt.Errorf("tasks %q and %q: %w", other, task.Name, ErrDuplicatePrio)
		}
		prios[task.Priority] = task.Name

		if task.PeriodMs == 0 {
			return fmt.Errorf("task %q: %w", task.Name, core.ErrInvalidPeriod)
		}
	}
	return nil
}

// StartTime parses Clock.Start
func (c *Config) StartTime() (hours, minutes, seconds uint8, err error) {
	parts := strings.Split(c.Clock.Start, ":")
	if len(parts) != 3 {
		return 0, 0, 0, ErrBadStartTime
	}
	limits := [3]uint64{23, 59, 59}
	var v [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil || n > limits[i] {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrBadStartTime, c.Clock.Start)
		}
		v[i] = uint8(n)
	}
	return v[0], v[1], v[2], nil
}

// Schedule converts the task list for app.BuildTable
func (c *Config) Schedule() []app.Schedule {
	out := make([]app.Schedule, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		out = append(out, app.Schedule{
			Name:         t.Name,
			Priority:     t.Priority,
			PeriodMs:     t.PeriodMs,
			FirstDelayMs: t.FirstDelayMs,
		})
	}
	return out
}

// Task returns the named task
func (c *Config) Task(name string) (Task, bool) {
	for _, t := range c.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return Task{}, false
}

func knownTask(name string) bool {
	switch name {
	case app.TaskSwitchPoll, app.TaskCtrlLED, app.TaskHeartbeat,
		app.TaskTrafficLight, app.TaskClock, app.TaskTelemetry, TaskBusy:
		return true
	}
	return false
}
