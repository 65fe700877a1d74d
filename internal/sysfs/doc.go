/*
Package sysfs manages GPIO pins through the Linux GPIO sysfs interface.

Ref: https://www.kernel.org/doc/Documentation/gpio/sysfs.txt

A pin is exported (reserved) by writing its number to /sys/class/gpio/export,
configured through gpio<N>/direction, driven or sampled through gpio<N>/value
and finally unexported (released) through /sys/class/gpio/unexport. Output
pins are always driven low before they are released.

The Controller keeps a registry of the pins it reserved so a pin is released
exactly once. Open returns a Pin handle whose Close releases it:

	ctrl := sysfs.NewController()
	defer ctrl.Close()

	led, err := ctrl.Open(17, sysfs.Out)
	if err != nil {
		return err
	}
	defer led.Close()

	led.Blink(100 * time.Millisecond)

The filesystem is an afero.Fs so the protocol can be exercised against
FakeKernel without hardware.
*/
package sysfs
