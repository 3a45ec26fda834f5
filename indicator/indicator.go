// Package indicator drives optional panel LEDs on the gateway host
// itself. These mirror the access decisions locally; the LEDs next to the
// door are on the actuator controller and are driven over the serial link.
package indicator

// Indicator is the interface for local status indicator implementations.
type Indicator interface {
	// Idle sets the indicator to idle/ready state.
	Idle()

	// Granted sets the indicator to access granted state.
	Granted()

	// Denied sets the indicator to access denied state.
	Denied()

	// ConnectionLost sets the indicator to connection lost state.
	ConnectionLost()

	// Release releases any hardware resources.
	Release() error
}

// Config holds configuration for indicator implementations.
type Config struct {
	Chip     string `yaml:"chip"`      // GPIO character device, default "gpiochip0"
	GreenPin *int   `yaml:"green_pin"` // nil = not configured
	RedPin   *int   `yaml:"red_pin"`   // nil = not configured
}

// New creates an Indicator based on the provided configuration. With no
// pins configured a no-op indicator is returned.
func New(cfg Config) (Indicator, error) {
	if cfg.GreenPin == nil && cfg.RedPin == nil {
		return &Noop{}, nil
	}

	chip := cfg.Chip
	if chip == "" {
		chip = "gpiochip0"
	}
	return NewGPIO(chip, cfg.GreenPin, cfg.RedPin)
}
