// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/button-led/internal/logic"
)

// Topic is the MQTT topic for debounced button events.
const Topic = "gpio/button-led/events"

// TopicLED is the MQTT topic for LED mode changes.
const TopicLED = "gpio/button-led/led"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "gpio/button-led/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a button event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishMode sends an LED mode change to the broker.
	PublishMode(change logic.ModeChange) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload is the MQTT message payload for a button event.
type Payload struct {
	Buttons ButtonsPayload `json:"buttons"`
}

// ButtonsPayload contains the button event details.
type ButtonsPayload struct {
	Timestamp string      `json:"timestamp"`
	Event     string      `json:"event"`
	Button1   ButtonState `json:"button1"`
	Button2   ButtonState `json:"button2"`
	HeldMs    int64       `json:"held_ms,omitempty"`
}

// ButtonState represents a single button's debounced state.
type ButtonState struct {
	State string `json:"state"`
}

// FormatPayload creates the JSON payload for a button event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Buttons: ButtonsPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Button1:   ButtonState{State: string(event.B1State)},
			Button2:   ButtonState{State: string(event.B2State)},
			HeldMs:    event.Held.Milliseconds(),
		},
	}
	return json.Marshal(payload)
}

// LEDPayload is the MQTT message payload for an LED mode change.
type LEDPayload struct {
	LED LEDPayloadInner `json:"led"`
}

// LEDPayloadInner contains the mode change details.
type LEDPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Mode      string `json:"mode"`
	Previous  string `json:"previous,omitempty"`
}

// FormatModePayload creates the JSON payload for an LED mode change.
func FormatModePayload(change logic.ModeChange) ([]byte, error) {
	return json.Marshal(LEDPayload{
		LED: LEDPayloadInner{
			Timestamp: change.Timestamp.UTC().Format(time.RFC3339),
			Mode:      string(change.Mode),
			Previous:  string(change.Previous),
		},
	})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
