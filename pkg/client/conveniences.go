package client

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	eyeHeight   = 1.62
	maxDigReach = 5.0

	// entity action ID for getting out of bed
	actionLeaveBed int32 = 2
)

var errNoSelfModule = fmt.Errorf("client: self module not registered")

func (c *Client) positionProvider() (PositionProvider, bool) {
	for _, m := range c.modules {
		if pp, ok := m.(PositionProvider); ok {
			return pp, true
		}
	}
	return nil, false
}

func (c *Client) entityIDProvider() (EntityIDProvider, bool) {
	for _, m := range c.modules {
		if ep, ok := m.(EntityIDProvider); ok {
			return ep, true
		}
	}
	return nil, false
}

// DigTime estimates how long breaking a block of the given hardness takes
// with a bare hand, as a crude vanilla approximation.
func DigTime(hardness float64) time.Duration {
	if hardness <= 0 {
		return 0
	}
	return time.Duration(hardness * 1.5 * float64(time.Second))
}

// LookAt rotates the bot's head toward a world point. Yaw 0 faces +Z and
// grows clockwise; pitch is negative looking up.
func (c *Client) LookAt(x, y, z float64) error {
	pp, ok := c.positionProvider()
	if !ok {
		return errNoSelfModule
	}
	px, py, pz := pp.Position()

	dx := x - px
	dy := y - (py + eyeHeight)
	dz := z - pz

	ground := math.Sqrt(dx*dx + dz*dz)
	yaw := -math.Atan2(dx, dz) / math.Pi * 180
	if yaw < 0 {
		yaw += 360
	}
	pitch := -math.Atan2(dy, ground) / math.Pi * 180

	return c.SendLook(float32(yaw), float32(pitch), true)
}

// Dig breaks the block at (x, y, z). It faces the block, starts digging,
// holds for the block's estimated dig time, finishes, and then waits for the
// server to confirm the break with a block update at those coordinates.
// Out-of-reach blocks are rejected before any packet is sent. Returns once
// digging_completed has been emitted, or with the abort cause.
func (c *Client) Dig(ctx context.Context, x, y, z int32, face int32, hardness float64) error {
	pp, ok := c.positionProvider()
	if !ok {
		return errNoSelfModule
	}
	px, py, pz := pp.Position()

	bx := float64(x) + 0.5
	by := float64(y) + 0.5
	bz := float64(z) + 0.5

	dx := bx - px
	dy := by - (py + eyeHeight)
	dz := bz - pz
	if math.Sqrt(dx*dx+dy*dy+dz*dz) > maxDigReach {
		return fmt.Errorf("client: block (%d, %d, %d) out of reach", x, y, z)
	}

	c.digMu.Lock()
	if c.digCancel != nil {
		c.digMu.Unlock()
		return fmt.Errorf("client: already digging")
	}
	digCtx, cancel := context.WithCancel(ctx)
	c.digCancel = cancel
	c.digMu.Unlock()

	defer func() {
		cancel()
		c.digMu.Lock()
		c.digCancel = nil
		c.digMu.Unlock()
	}()

	if err := c.LookAt(bx, by, bz); err != nil {
		return err
	}

	// listen before finishing so the confirming block update cannot race past
	confirmed := make(chan struct{}, 1)
	remove := c.On(EventBlockUpdate, func(args ...any) {
		if len(args) < 3 {
			return
		}
		ux, _ := args[0].(int32)
		uy, _ := args[1].(int32)
		uz, _ := args[2].(int32)
		if ux == x && uy == y && uz == z {
			select {
			case confirmed <- struct{}{}:
			default:
			}
		}
	})
	defer remove()

	seq := c.NextSequence()
	if err := c.SendDigging(DiggingStart, x, y, z, face, seq); err != nil {
		return err
	}

	select {
	case <-time.After(DigTime(hardness)):
	case <-digCtx.Done():
		_ = c.SendDigging(DiggingCancel, x, y, z, face, c.NextSequence())
		c.Emit(EventDiggingAborted, x, y, z)
		return digCtx.Err()
	case <-c.sessionDone():
		return ErrSessionEnded
	}

	if err := c.SendDigging(DiggingFinish, x, y, z, face, c.NextSequence()); err != nil {
		return err
	}

	select {
	case <-confirmed:
		c.Emit(EventDiggingCompleted, x, y, z)
		return nil
	case <-digCtx.Done():
		c.Emit(EventDiggingAborted, x, y, z)
		return digCtx.Err()
	case <-c.sessionDone():
		return ErrSessionEnded
	}
}

// StopDigging aborts an in-flight Dig, if any.
func (c *Client) StopDigging() {
	c.digMu.Lock()
	cancel := c.digCancel
	c.digMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// ActivateBlock right-clicks the block at (x, y, z): doors, buttons, levers,
// beds, chests.
func (c *Client) ActivateBlock(x, y, z int32) error {
	if err := c.PlaceBlock(HandMain, x, y, z, FaceTop, 0.5, 0.5, 0.5); err != nil {
		return err
	}
	return c.SwingArm(HandMain)
}

// Sleep lies down in the bed at (x, y, z). The bed must be within activation
// reach.
func (c *Client) Sleep(x, y, z int32) error {
	if err := c.ActivateBlock(x, y, z); err != nil {
		return err
	}
	c.Emit(EventSleep, x, y, z)
	return nil
}

// Wake gets the bot out of bed.
func (c *Client) Wake() error {
	ep, ok := c.entityIDProvider()
	if !ok {
		return errNoSelfModule
	}
	if err := c.EntityAction(ep.EntityID(), actionLeaveBed, 0); err != nil {
		return err
	}
	c.Emit(EventWake)
	return nil
}
