package app

import "tickrun/core"

// Light is one lamp of the traffic light
type Light uint8

const (
	Red Light = iota
	Yellow
	Green
)

func (l Light) String() string {
	switch l {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	default:
		return "unknown"
	}
}

// Phase lengths in runs of the traffic light runnable
const (
	RedSteps    = 7
	YellowSteps = 3
	GreenSteps  = 7
)

// TrafficLight cycles red, yellow, green, yellow, red. It counts its own
// runs, so the runnable period sets the phase unit (one second in the
// default table). Yellow leads to whichever colour did not precede it.
type TrafficLight struct {
	lamps [3]*LED

	current  Light
	previous Light
	elapsed  uint32
}

// NewTrafficLight creates the state machine. It starts in yellow, coming
// from red.
func NewTrafficLight(red, yellow, green *LED) *TrafficLight {
	return &TrafficLight{
		lamps:    [3]*LED{red, yellow, green},
		current:  Yellow,
		previous: Red,
	}
}

// Run shows the current light and advances the phase
func (t *TrafficLight) Run() {
	t.elapsed++
	t.show(t.current)

	switch t.current {
	case Red:
		if t.elapsed >= RedSteps {
			t.enter(Yellow)
		}
	case Yellow:
		if t.elapsed >= YellowSteps {
			if t.previous == Red {
				t.enter(Green)
			} else {
				t.enter(Red)
			}
		}
	case Green:
		if t.elapsed >= GreenSteps {
			t.enter(Yellow)
		}
	}
}

func (t *TrafficLight) enter(next Light) {
	t.previous = t.current
	t.current = next
	t.elapsed = 0
}

func (t *TrafficLight) show(on Light) {
	for i, lamp := range t.lamps {
		if err := lamp.Set(Light(i) == on); err != nil {
			core.DebugPrintln("traffic: " + Light(i).String() + ": " + err.Error())
		}
	}
}

// Current returns the light the next run will show
func (t *TrafficLight) Current() Light {
	return t.current
}

// Showing returns the lamp that is lit, if any
func (t *TrafficLight) Showing() (Light, bool) {
	for i, lamp := range t.lamps {
		if lamp.IsOn() {
			return Light(i), true
		}
	}
	return 0, false
}
