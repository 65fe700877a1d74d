// Package logic contains the pure control logic of the button/LED daemon.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// State represents the debounced state of a button.
type State string

const (
	StatePressed  State = "PRESSED"
	StateReleased State = "RELEASED"
)

// EventType represents a button transition event.
type EventType string

const (
	EventB1Pressed  EventType = "BUTTON1_PRESSED"
	EventB1Released EventType = "BUTTON1_RELEASED"
	EventB2Pressed  EventType = "BUTTON2_PRESSED"
	EventB2Released EventType = "BUTTON2_RELEASED"
)

// Event represents a button transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	B1State   State
	B2State   State
	// Held is how long the button was down, set on release events when the
	// press itself was observed.
	Held time.Duration
}

// ChannelState tracks debounce state for a single button.
type ChannelState struct {
	// Current stable (debounced) state
	Stable State
	// Pending state during debounce
	Pending State
	// Time when pending state was first observed
	PendingSince time.Time
	// Whether we have established a baseline
	Baselined bool
}

// Input represents a single sample of both buttons.
type Input struct {
	B1   bool // true = pressed
	B2   bool
	Time time.Time
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	B1Pressed  int
	B1Released int
	B2Pressed  int
	B2Released int
	// ModeChanges counts LED mode changes.
	ModeChanges int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
