package gpio

import (
	"errors"
	"time"
)

// FakeBoard is a test double that returns scripted button samples and
// records what was done to the LED.
type FakeBoard struct {
	// Samples contains scripted (button1, button2) values to return.
	// Each call to Read() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// LEDOps records every LED operation in order.
	LEDOps []LEDOp

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error

	// LEDError, if set, will be returned by Set() and Blink()
	LEDError error
}

// Sample represents a single reading of both buttons.
type Sample struct {
	B1 bool // true = pressed
	B2 bool // true = pressed
}

// LEDOp is one recorded LED operation. Blink is zero for Set calls.
type LEDOp struct {
	On    bool
	Blink time.Duration
}

// NewFakeBoard creates a FakeBoard with the given samples.
func NewFakeBoard(samples []Sample) *FakeBoard {
	return &FakeBoard{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeBoard) Read() (bool, bool, error) {
	if f.ReadError != nil {
		return false, false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample.B1, sample.B2, nil
}

// Set records a steady LED level.
func (f *FakeBoard) Set(on bool) error {
	if f.LEDError != nil {
		return f.LEDError
	}
	f.LEDOps = append(f.LEDOps, LEDOp{On: on})
	return nil
}

// Blink records a blink without sleeping.
func (f *FakeBoard) Blink(delay time.Duration) error {
	if f.LEDError != nil {
		return f.LEDError
	}
	f.LEDOps = append(f.LEDOps, LEDOp{Blink: delay})
	return nil
}

// Close marks the board as closed.
func (f *FakeBoard) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the board to the beginning of samples and clears recorded
// LED operations.
func (f *FakeBoard) Reset() {
	f.index = 0
	f.LEDOps = nil
	f.Closed = false
}
