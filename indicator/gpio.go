package indicator

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIO implements Indicator using discrete LED lines on a GPIO character
// device.
type GPIO struct {
	greenLine *gpiocdev.Line
	redLine   *gpiocdev.Line
}

// NewGPIO requests the configured LED lines as outputs, starting off.
func NewGPIO(chip string, greenPin, redPin *int) (*GPIO, error) {
	g := &GPIO{}

	if greenPin != nil {
		line, err := gpiocdev.RequestLine(chip, *greenPin, gpiocdev.AsOutput(0))
		if err != nil {
			return nil, fmt.Errorf("request green line %d: %w", *greenPin, err)
		}
		g.greenLine = line
	}
	if redPin != nil {
		line, err := gpiocdev.RequestLine(chip, *redPin, gpiocdev.AsOutput(0))
		if err != nil {
			g.Release()
			return nil, fmt.Errorf("request red line %d: %w", *redPin, err)
		}
		g.redLine = line
	}

	return g, nil
}

// Idle implements Indicator.Idle.
func (g *GPIO) Idle() {
	g.set(g.greenLine, 0)
	g.set(g.redLine, 0)
}

// Granted implements Indicator.Granted.
func (g *GPIO) Granted() {
	g.set(g.greenLine, 1)
	g.set(g.redLine, 0)
}

// Denied implements Indicator.Denied.
func (g *GPIO) Denied() {
	g.set(g.greenLine, 0)
	g.set(g.redLine, 1)
}

// ConnectionLost implements Indicator.ConnectionLost.
func (g *GPIO) ConnectionLost() {
	g.set(g.greenLine, 1)
	g.set(g.redLine, 1)
}

// Release implements Indicator.Release.
func (g *GPIO) Release() error {
	var firstErr error
	for _, line := range []*gpiocdev.Line{g.greenLine, g.redLine} {
		if line == nil {
			continue
		}
		line.SetValue(0)
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (g *GPIO) set(line *gpiocdev.Line, value int) {
	if line == nil {
		return
	}
	line.SetValue(value)
}
