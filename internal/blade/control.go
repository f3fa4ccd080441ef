package blade

// Control turns a raw per-frame "is pressed" poll into press, hold and
// release edges. After a release, presses are ignored for Cooldown
// seconds.
type Control struct {
	OnPressed  func()
	OnHeld     func()
	OnReleased func()
	OnNotHeld  func()
	Cooldown   func() float64

	down         bool
	lastPress    float64
	lastRelease  float64
	everReleased bool
}

// Poll feeds the raw state for this frame and fires the callbacks.
func (c *Control) Poll(now float64, raw bool) {
	pressed := raw && !c.cooling(now)
	if pressed {
		if !c.down {
			c.down = true
			c.lastPress = now
			call(c.OnPressed)
		}
		call(c.OnHeld)
		return
	}
	if c.down {
		c.down = false
		c.lastRelease = now
		c.everReleased = true
		call(c.OnReleased)
	}
	call(c.OnNotHeld)
}

func (c *Control) cooling(now float64) bool {
	if c.Cooldown == nil || !c.everReleased {
		return false
	}
	return now-c.lastRelease <= c.Cooldown()
}

// Down reports the debounced state after the last Poll.
func (c *Control) Down() bool { return c.down }

func (c *Control) LastPress() float64   { return c.lastPress }
func (c *Control) LastRelease() float64 { return c.lastRelease }

// Released reports whether a release has happened since the last Reset.
func (c *Control) Released() bool { return c.everReleased }

// Reset forgets the previous state without firing callbacks.
func (c *Control) Reset() {
	c.down = false
	c.everReleased = false
	c.lastPress, c.lastRelease = 0, 0
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// Controls pairs the trigger with the secondary button.
type Controls struct {
	Trigger Control
	Button  Control
}

// Poll dispatches the trigger first, then the button.
func (c *Controls) Poll(now float64, trigger, button bool) {
	c.Trigger.Poll(now, trigger)
	c.Button.Poll(now, button)
}
