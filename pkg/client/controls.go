package client

import "fmt"

// Movement control names. A control is a held intent; its transitions feed
// the serverbound movement packets built by the physics collaborator.
const (
	ControlForward = "forward"
	ControlBack    = "back"
	ControlLeft    = "left"
	ControlRight   = "right"
	ControlJump    = "jump"
	ControlSprint  = "sprint"
	ControlSneak   = "sneak"
)

var controlNames = []string{
	ControlForward, ControlBack, ControlLeft, ControlRight,
	ControlJump, ControlSprint, ControlSneak,
}

// SetControlState sets a held movement intent. Unknown names are rejected.
func (c *Client) SetControlState(control string, held bool) error {
	c.controlMu.Lock()
	defer c.controlMu.Unlock()
	if _, ok := c.controls[control]; !ok {
		return fmt.Errorf("client: unknown control %q", control)
	}
	c.controls[control] = held
	return nil
}

// GetControlState reports whether a movement intent is held.
func (c *Client) GetControlState(control string) bool {
	c.controlMu.Lock()
	defer c.controlMu.Unlock()
	return c.controls[control]
}

// ClearControlStates releases every held movement intent.
func (c *Client) ClearControlStates() {
	c.controlMu.Lock()
	defer c.controlMu.Unlock()
	for _, name := range controlNames {
		c.controls[name] = false
	}
}

func newControls() map[string]bool {
	m := make(map[string]bool, len(controlNames))
	for _, name := range controlNames {
		m[name] = false
	}
	return m
}
