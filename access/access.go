// Package access implements the grant/deny state machine sitting between
// the card reader and the actuator hardware. A credential read moves the
// controller Idle -> Evaluating -> Granting or Denying -> Idle; every
// transition runs its full command sequence even when the transport is
// failing, so the in-memory servo state is always the designed end state
// of the transition.
package access

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"servogate/cards"
	"servogate/command"
	"servogate/transport"
)

// LED colors on the actuator controller.
const (
	LedGreen = "green"
	LedRed   = "red"
)

// ServoState is the shared servo mirror: whether control is enabled and
// the last commanded position in degrees (0..180).
type ServoState struct {
	Enabled  bool
	Position int
}

// Config holds the controller's tunables.
type Config struct {
	// DefaultPos is the position commanded on deny/disable.
	DefaultPos int

	// AllowedPos is the position commanded on grant/enable.
	AllowedPos int

	// Dwell is how long the feedback LED is held on after a decision.
	// Zero means one second.
	Dwell time.Duration
}

// DecisionFunc is called after each credential evaluation with the decoded
// card id and the outcome.
type DecisionFunc func(card string, allowed bool)

// Controller owns the servo state and drives the actuator through the
// shared transport.
type Controller struct {
	store *cards.Store
	tx    transport.Sender
	cfg   Config

	mu    sync.Mutex
	servo ServoState

	onDecision DecisionFunc
}

// NewController creates a controller with the servo disabled at the
// default position.
func NewController(store *cards.Store, tx transport.Sender, cfg Config) *Controller {
	if cfg.Dwell == 0 {
		cfg.Dwell = time.Second
	}
	return &Controller{
		store: store,
		tx:    tx,
		cfg:   cfg,
		servo: ServoState{Enabled: false, Position: cfg.DefaultPos},
	}
}

// OnDecision registers a callback fired after each grant/deny evaluation.
func (c *Controller) OnDecision(fn DecisionFunc) {
	c.onDecision = fn
}

// Servo returns a snapshot of the current servo state.
func (c *Controller) Servo() ServoState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.servo
}

// DecodeCredential turns a raw reader payload into a card id: each byte is
// taken as a character code and surrounding whitespace is trimmed. It never
// fails; garbage in yields some string that simply won't be authorized.
func DecodeCredential(raw []byte) string {
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return strings.TrimSpace(string(runes))
}

// Run consumes raw card reads until the context is cancelled. Reads are
// handled one at a time; a read arriving during a dwell waits in the
// channel behind the one in progress.
func (c *Controller) Run(ctx context.Context, reads <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw := <-reads:
			c.HandleRead(raw)
		}
	}
}

// HandleRead evaluates one raw credential read and runs the grant or deny
// sequence to completion. Returns the decision.
func (c *Controller) HandleRead(raw []byte) bool {
	card := DecodeCredential(raw)
	log.Printf("Card read: %s", card)

	allowed := c.store.Authorized(card)
	if c.onDecision != nil {
		c.onDecision(card, allowed)
	}

	if allowed {
		c.grant()
	} else {
		c.deny()
	}
	return allowed
}

func (c *Controller) grant() {
	log.Println("Access granted")
	c.send(command.Led(LedGreen, true))
	c.EnableServo()
	time.Sleep(c.cfg.Dwell)
	c.send(command.Led(LedGreen, false))
}

func (c *Controller) deny() {
	log.Println("Access denied")
	c.send(command.Led(LedRed, true))
	c.DisableServo()
	time.Sleep(c.cfg.Dwell)
	c.send(command.Led(LedRed, false))
}

// EnableServo turns servo control on and moves to the allowed position.
// Also reachable directly from the console.
func (c *Controller) EnableServo() {
	c.mu.Lock()
	c.servo = ServoState{Enabled: true, Position: c.cfg.AllowedPos}
	c.mu.Unlock()
	c.send(command.ServoEnable(true))
}

// DisableServo turns servo control off and returns to the default position.
func (c *Controller) DisableServo() {
	c.mu.Lock()
	c.servo = ServoState{Enabled: false, Position: c.cfg.DefaultPos}
	c.mu.Unlock()
	c.send(command.ServoEnable(false))
}

// SetPosition commands an absolute servo position. Angles outside 0..180
// are rejected with no state change and no emission. The enabled flag is
// never touched by a position command.
func (c *Controller) SetPosition(angle int) bool {
	if angle < 0 || angle > 180 {
		return false
	}

	c.mu.Lock()
	c.servo.Position = angle
	c.mu.Unlock()
	c.send(command.ServoPosition(angle))
	return true
}

// send emits one command. A transport failure is logged and swallowed: the
// transition carries on and the hardware is allowed to diverge until the
// link comes back.
func (c *Controller) send(cmd command.Command) {
	if err := c.tx.Send(cmd.Encode()); err != nil {
		log.Printf("Send command: %v", err)
	}
}
