//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "button-led"

// CdevBoard drives the board through the Linux GPIO character device.
type CdevBoard struct {
	chip    *gpiocdev.Chip
	led     *gpiocdev.Line
	button1 *gpiocdev.Line
	button2 *gpiocdev.Line
	sleep   func(time.Duration)
}

// NewCdevBoard requests the LED as output (initially low) and both buttons
// as inputs with pull-down on the named chip, e.g. "gpiochip0".
func NewCdevBoard(chipName string, pins Pins) (*CdevBoard, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	led, err := chip.RequestLine(int(pins.LED), gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request LED pin %d: %w", pins.LED, err)
	}

	button1, err := chip.RequestLine(int(pins.Button1), gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		led.Close()
		chip.Close()
		return nil, fmt.Errorf("request button 1 pin %d: %w", pins.Button1, err)
	}

	button2, err := chip.RequestLine(int(pins.Button2), gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		button1.Close()
		led.Close()
		chip.Close()
		return nil, fmt.Errorf("request button 2 pin %d: %w", pins.Button2, err)
	}

	return &CdevBoard{
		chip:    chip,
		led:     led,
		button1: button1,
		button2: button2,
		sleep:   time.Sleep,
	}, nil
}

// Read returns the levels of both buttons.
func (b *CdevBoard) Read() (bool, bool, error) {
	v1, err := b.button1.Value()
	if err != nil {
		return false, false, fmt.Errorf("read button 1: %w", err)
	}

	v2, err := b.button2.Value()
	if err != nil {
		return false, false, fmt.Errorf("read button 2: %w", err)
	}

	return v1 == 1, v2 == 1, nil
}

// Set drives the LED.
func (b *CdevBoard) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := b.led.SetValue(v); err != nil {
		return fmt.Errorf("set LED: %w", err)
	}
	return nil
}

// Blink blinks the LED once.
func (b *CdevBoard) Blink(delay time.Duration) error {
	if err := b.Set(true); err != nil {
		return err
	}
	b.sleep(delay)
	if err := b.Set(false); err != nil {
		return err
	}
	b.sleep(delay)
	return nil
}

// Close drives the LED low, then returns every line to input with pull-down
// (the Pi boot default) before releasing it.
func (b *CdevBoard) Close() error {
	var errs []error

	if b.led != nil {
		if err := b.led.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive LED low: %w", err))
		}
		if err := b.led.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure LED pin: %w", err))
		}
		if err := b.led.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close LED pin: %w", err))
		}
	}
	for i, l := range []*gpiocdev.Line{b.button1, b.button2} {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button %d pin: %w", i+1, err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
