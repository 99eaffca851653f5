//go:build stm32f4

package main

import (
	"machine"

	"tinygo.org/x/drivers/hd44780"
)

// newLCD brings up the 16x2 character display the clock draws on
func newLCD() (*hd44780.Device, error) {
	dev, err := hd44780.NewGPIO4Bit(
		[]machine.Pin{pinLCDD4, pinLCDD5, pinLCDD6, pinLCDD7},
		pinLCDE, pinLCDRS, machine.NoPin,
	)
	if err != nil {
		return nil, err
	}
	if err := dev.Configure(hd44780.Config{Width: 16, Height: 2}); err != nil {
		return nil, err
	}
	return &dev, nil
}
