// Package config loads the simulator's YAML settings.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/flavioheleno/microbit"
	"github.com/flavioheleno/microbit/control"
	"github.com/flavioheleno/microbit/engine"
)

// Timing overrides the board's display timing; zero fields keep the default.
type Timing struct {
	ClockHz    string   `yaml:"clock_hz,omitempty"`    // e.g. 62.5kHz
	CycleTicks uint16   `yaml:"cycle_ticks,omitempty"` // row dwell in ticks
	Levels     []uint16 `yaml:"levels,omitempty"`      // 8 lit durations, dimmest first
}

// Config is the simulator configuration.
type Config struct {
	Board     string `yaml:"board"`     // "v1" | "v2"
	Alignment string `yaml:"alignment"` // "start" | "end"
	Timing    Timing `yaml:"timing,omitempty"`

	// GPIO maps matrix pins (P0.21) to periph pin names (GPIO17). When set,
	// the display drives real pins instead of in-memory registers.
	GPIO map[string]string `yaml:"gpio,omitempty"`

	Tick     string `yaml:"tick"`      // clock wake-up interval, e.g. 1ms
	Preview  string `yaml:"preview"`   // websocket listen address, empty to disable
	Demo     string `yaml:"demo"`      // "all" | "greyscale" | "text" | "blocking"
	Text     string `yaml:"text"`      // scrolled by the text demo
	LogLevel string `yaml:"log_level"` // zerolog level name
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Board:     "v2",
		Alignment: "start",
		Tick:      "1ms",
		Preview:   "localhost:8080",
		Demo:      "all",
		Text:      "HELLO",
		LogLevel:  "info",
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path as YAML.
func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ResolveBoard returns the selected board with any timing override applied.
func (c *Config) ResolveBoard() (microbit.Board, error) {
	b, err := microbit.BoardByName(c.Board)
	if err != nil {
		return microbit.Board{}, err
	}
	if c.Timing.ClockHz != "" {
		var f physic.Frequency
		if err := f.Set(c.Timing.ClockHz); err != nil {
			return microbit.Board{}, fmt.Errorf("config: clock_hz: %w", err)
		}
		b.Timing.ClockHz = f
	}
	if c.Timing.CycleTicks != 0 {
		b.Timing.CycleTicks = c.Timing.CycleTicks
	}
	if len(c.Timing.Levels) != 0 {
		if len(c.Timing.Levels) != len(b.Timing.Levels) {
			return microbit.Board{}, fmt.Errorf("config: levels: want %d durations, got %d", len(b.Timing.Levels), len(c.Timing.Levels))
		}
		copy(b.Timing.Levels[:], c.Timing.Levels)
	}
	if err := b.Validate(); err != nil {
		return microbit.Board{}, fmt.Errorf("config: %w", err)
	}
	return b, nil
}

// Opts returns display options for the configuration.
func (c *Config) Opts(log *zerolog.Logger) (*microbit.Opts, error) {
	b, err := c.ResolveBoard()
	if err != nil {
		return nil, err
	}
	align, err := engine.ParseAlignment(c.Alignment)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &microbit.Opts{Board: &b, Alignment: align, Logger: log}, nil
}

// TickInterval returns how often the simulated clock wakes up.
func (c *Config) TickInterval() (time.Duration, error) {
	if c.Tick == "" {
		return time.Millisecond, nil
	}
	d, err := time.ParseDuration(c.Tick)
	if err != nil {
		return 0, fmt.Errorf("config: tick: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: tick must be positive, got %s", d)
	}
	return d, nil
}

// Level returns the log level.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(c.LogLevel)
}

// HostPins groups the GPIO mapping by port: pins[port][bit] is a periph pin
// name. Every row and column pin of the board must be mapped.
func (c *Config) HostPins(b microbit.Board) ([]map[uint8]string, error) {
	pins := make([]map[uint8]string, b.Pinout.Ports())
	for i := range pins {
		pins[i] = map[uint8]string{}
	}
	for k, name := range c.GPIO {
		p, err := control.ParsePin(k)
		if err != nil {
			return nil, fmt.Errorf("config: gpio: %w", err)
		}
		if p.Port >= len(pins) {
			return nil, fmt.Errorf("config: gpio: %s is not on a %s port", p, b.Name)
		}
		pins[p.Port][p.Num] = name
	}
	for _, set := range [][]control.Pin{b.Pinout.Rows, b.Pinout.Cols} {
		for _, p := range set {
			if _, ok := pins[p.Port][p.Num]; !ok {
				return nil, fmt.Errorf("config: gpio: %s is not mapped", p)
			}
		}
	}
	return pins, nil
}
