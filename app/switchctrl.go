package app

import "tickrun/core"

// SwitchPoll samples a switch into its debounce filter
type SwitchPoll struct {
	sw *Switch
}

func NewSwitchPoll(sw *Switch) *SwitchPoll {
	return &SwitchPoll{sw: sw}
}

// Run takes one sample
func (p *SwitchPoll) Run() {
	if _, err := p.sw.Poll(); err != nil {
		core.DebugPrintln("switch: " + err.Error())
	}
}

// SwitchControl mirrors the debounced switch state onto an LED
type SwitchControl struct {
	sw  *Switch
	led *LED
}

func NewSwitchControl(sw *Switch, led *LED) *SwitchControl {
	return &SwitchControl{sw: sw, led: led}
}

// Run lights the LED while the switch is held
func (c *SwitchControl) Run() {
	pressed := c.sw.Pressed()
	if pressed == c.led.IsOn() {
		return
	}
	if err := c.led.Set(pressed); err != nil {
		core.DebugPrintln("ctrl: " + err.Error())
	}
}
