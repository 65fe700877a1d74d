// Package gpio provides the two-button, one-LED board the daemon drives.
// The sysfs implementation goes through internal/sysfs, the cdev one uses
// the Linux GPIO character device, and the fake one allows testing without
// hardware.
package gpio

import "time"

// Reader reads the button inputs.
type Reader interface {
	// Read returns the levels of button 1 and button 2 (true = pressed).
	Read() (bool, bool, error)

	// Close releases GPIO resources. The LED is driven low first.
	Close() error
}

// LED drives the indicator output.
type LED interface {
	// Set drives the LED on or off.
	Set(on bool) error

	// Blink turns the LED on for delay, then off for delay. It blocks for
	// twice delay.
	Blink(delay time.Duration) error
}

// Board is a Reader with an LED.
type Board interface {
	Reader
	LED
}

// Pins holds the BCM pin numbers of the board.
type Pins struct {
	LED     uint
	Button1 uint
	Button2 uint
}

// Default pin assignment (BCM numbering).
const (
	DefaultPinLED     = 17
	DefaultPinButton1 = 22
	DefaultPinButton2 = 27
)

// DefaultPins returns the default pin assignment.
func DefaultPins() Pins {
	return Pins{LED: DefaultPinLED, Button1: DefaultPinButton1, Button2: DefaultPinButton2}
}
