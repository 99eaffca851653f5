package app

import "tickrun/core"

const secondsPerDay = 24 * 60 * 60

// Display is a character display. *hd44780.Device satisfies it.
type Display interface {
	SetCursor(x, y uint8)
	Write(p []byte) (int, error)
	Display() error
}

// Clock shows a wall clock as HH:MM:SS on the first display row and
// advances one second per run
type Clock struct {
	display Display
	seconds uint32
	text    [8]byte
}

// NewClock creates a clock starting at the given time of day
func NewClock(display Display, hours, minutes, seconds uint8) *Clock {
	c := &Clock{display: display}
	c.seconds = (uint32(hours)*3600 + uint32(minutes)*60 + uint32(seconds)) % secondsPerDay
	return c
}

// Run draws the current time and then advances it
func (c *Clock) Run() {
	c.format()
	c.display.SetCursor(0, 0)
	if _, err := c.display.Write(c.text[:]); err != nil {
		core.DebugPrintln("clock: " + err.Error())
		return
	}
	if err := c.display.Display(); err != nil {
		core.DebugPrintln("clock: " + err.Error())
	}
	c.seconds = (c.seconds + 1) % secondsPerDay
}

// Text returns the time the next run will draw
func (c *Clock) Text() string {
	c.format()
	return string(c.text[:])
}

func (c *Clock) format() {
	put2(c.text[0:2], c.seconds/3600)
	c.text[2] = ':'
	put2(c.text[3:5], c.seconds/60%60)
	c.text[5] = ':'
	put2(c.text[6:8], c.seconds%60)
}

func put2(dst []byte, v uint32) {
	dst[0] = byte('0' + v/10)
	dst[1] = byte('0' + v%10)
}
