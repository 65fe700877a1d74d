package gpio

import (
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/button-led/internal/sysfs"
)

// SysfsBoard drives the board through the GPIO sysfs interface.
type SysfsBoard struct {
	led     *sysfs.Pin
	button1 *sysfs.Pin
	button2 *sysfs.Pin
}

// NewSysfsBoard reserves the LED as output and both buttons as inputs.
// Pins reserved before a failure are released again.
func NewSysfsBoard(ctrl *sysfs.Controller, pins Pins) (*SysfsBoard, error) {
	led, err := ctrl.Open(pins.LED, sysfs.Out)
	if err != nil {
		return nil, fmt.Errorf("open LED pin %d: %w", pins.LED, err)
	}

	button1, err := ctrl.Open(pins.Button1, sysfs.In)
	if err != nil {
		led.Close()
		return nil, fmt.Errorf("open button 1 pin %d: %w", pins.Button1, err)
	}

	button2, err := ctrl.Open(pins.Button2, sysfs.In)
	if err != nil {
		button1.Close()
		led.Close()
		return nil, fmt.Errorf("open button 2 pin %d: %w", pins.Button2, err)
	}

	return &SysfsBoard{
		led:     led,
		button1: button1,
		button2: button2,
	}, nil
}

// Read samples both buttons. Unreadable value files read as released, so
// the error is always nil.
func (b *SysfsBoard) Read() (bool, bool, error) {
	return b.button1.Read(), b.button2.Read(), nil
}

// Set drives the LED.
func (b *SysfsBoard) Set(on bool) error {
	return b.led.Write(on)
}

// Blink blinks the LED once.
func (b *SysfsBoard) Blink(delay time.Duration) error {
	return b.led.Blink(delay)
}

// Close releases the LED (driving it low) and both buttons.
func (b *SysfsBoard) Close() error {
	var errs []error
	if err := b.led.Close(); err != nil {
		errs = append(errs, fmt.Errorf("release LED pin: %w", err))
	}
	if err := b.button1.Close(); err != nil {
		errs = append(errs, fmt.Errorf("release button 1 pin: %w", err))
	}
	if err := b.button2.Close(); err != nil {
		errs = append(errs, fmt.Errorf("release button 2 pin: %w", err))
	}
	return errors.Join(errs...)
}
