// Package config loads the button-led daemon configuration from YAML.
//
// A file only needs the keys it wants to change:
//
//	backend: sysfs
//	pins:
//	  led: 17
//	  button1: 22
//	  button2: 27
//	blink: 250ms
//	broker: tcp://mqtt.local:1883
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/button-led/internal/gpio"
	"github.com/sweeney/button-led/internal/sysfs"
)

// Board backends.
const (
	BackendSysfs = "sysfs"
	BackendCdev  = "cdev"
)

// Pins holds the BCM pin numbers.
type Pins struct {
	LED     uint `yaml:"led"`
	Button1 uint `yaml:"button1"`
	Button2 uint `yaml:"button2"`
}

// GPIO converts p to the board pin assignment.
func (p Pins) GPIO() gpio.Pins {
	return gpio.Pins{LED: p.LED, Button1: p.Button1, Button2: p.Button2}
}

// Config is the daemon configuration.
type Config struct {
	Backend   string        `yaml:"backend"`
	Chip      string        `yaml:"chip"`
	SysfsRoot string        `yaml:"sysfs_root"`
	Pins      Pins          `yaml:"pins"`
	Poll      time.Duration `yaml:"poll"`
	Blink     time.Duration `yaml:"blink"`
	Debounce  time.Duration `yaml:"debounce"`
	Heartbeat time.Duration `yaml:"heartbeat"` // 0 disables
	Broker    string        `yaml:"broker"`
	ClientID  string        `yaml:"client_id"`
	HTTP      string        `yaml:"http"` // empty disables
}

// Default returns the configuration used when no file is given.
func Default() Config {
	p := gpio.DefaultPins()
	return Config{
		Backend:   BackendSysfs,
		Chip:      "gpiochip0",
		SysfsRoot: sysfs.DefaultRoot,
		Pins:      Pins{LED: p.LED, Button1: p.Button1, Button2: p.Button2},
		Poll:      20 * time.Millisecond,
		Blink:     100 * time.Millisecond,
		Debounce:  50 * time.Millisecond,
		Heartbeat: 15 * time.Minute,
		Broker:    "tcp://localhost:1883",
		ClientID:  "button-led",
		HTTP:      ":8080",
	}
}

// Load reads path from the OS filesystem. See LoadFs.
func Load(path string) (Config, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs reads a YAML file on top of Default and validates the result.
// Unknown keys are rejected.
func LoadFs(fs afero.Fs, path string) (Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that c describes a usable board and loop.
func (c Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendSysfs:
		if c.SysfsRoot == "" {
			errs = append(errs, errors.New("sysfs_root must not be empty"))
		}
	case BackendCdev:
		if c.Chip == "" {
			errs = append(errs, errors.New("chip must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSysfs, BackendCdev))
	}

	p := c.Pins
	if p.LED == p.Button1 || p.LED == p.Button2 || p.Button1 == p.Button2 {
		errs = append(errs, fmt.Errorf("pins must be distinct: led=%d button1=%d button2=%d", p.LED, p.Button1, p.Button2))
	}

	if c.Poll <= 0 {
		errs = append(errs, fmt.Errorf("poll must be positive, got %v", c.Poll))
	}
	if c.Blink <= 0 {
		errs = append(errs, fmt.Errorf("blink must be positive, got %v", c.Blink))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %v", c.Debounce))
	}
	if c.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat))
	}
	if c.Broker == "" {
		errs = append(errs, errors.New("broker must not be empty"))
	}

	return errors.Join(errs...)
}
