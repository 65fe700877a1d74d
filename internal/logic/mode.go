package logic

import "time"

// Mode is what the LED is doing.
type Mode string

const (
	ModeOff   Mode = "OFF"   // steady low
	ModeOn    Mode = "ON"    // steady high
	ModeBlink Mode = "BLINK" // toggling with the blink period
)

// Decide maps the raw button levels to an LED mode: both pressed keeps the
// LED on, exactly one blinks it, neither keeps it off.
func Decide(b1, b2 bool) Mode {
	switch {
	case b1 && b2:
		return ModeOn
	case b1 || b2:
		return ModeBlink
	default:
		return ModeOff
	}
}

// ModeChange records the LED switching modes.
type ModeChange struct {
	Timestamp time.Time
	Mode      Mode
	Previous  Mode // empty for the first mode after startup
}

// ModeTracker reports LED mode changes.
type ModeTracker struct {
	current Mode
	changes int
}

// Observe records mode at time now and returns the change, or nil if the
// mode is unchanged.
func (m *ModeTracker) Observe(mode Mode, now time.Time) *ModeChange {
	if mode == m.current {
		return nil
	}
	c := &ModeChange{Timestamp: now, Mode: mode, Previous: m.current}
	m.current = mode
	m.changes++
	return c
}

// Current returns the last observed mode, empty before the first.
func (m *ModeTracker) Current() Mode {
	return m.current
}

// Changes returns the number of mode changes, including the first mode.
func (m *ModeTracker) Changes() int {
	return m.changes
}
