package indicator

// Noop is an Indicator that does nothing. Used when no pins are configured.
type Noop struct{}

// Idle implements Indicator.Idle.
func (n *Noop) Idle() {}

// Granted implements Indicator.Granted.
func (n *Noop) Granted() {}

// Denied implements Indicator.Denied.
func (n *Noop) Denied() {}

// ConnectionLost implements Indicator.ConnectionLost.
func (n *Noop) ConnectionLost() {}

// Release implements Indicator.Release.
func (n *Noop) Release() error { return nil }
