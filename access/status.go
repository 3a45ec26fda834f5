package access

import (
	"context"
	"log"
	"time"

	"servogate/cards"
	"servogate/command"
	"servogate/transport"
)

// Reporter periodically emits a status snapshot of the servo state and the
// registered card count over the shared transport. It only observes; a
// failed send just skips that cycle.
type Reporter struct {
	ctrl     *Controller
	store    *cards.Store
	tx       transport.Sender
	interval time.Duration
}

// NewReporter creates a reporter. A zero interval means two seconds.
func NewReporter(ctrl *Controller, store *cards.Store, tx transport.Sender, interval time.Duration) *Reporter {
	if interval == 0 {
		interval = 2 * time.Second
	}
	return &Reporter{
		ctrl:     ctrl,
		store:    store,
		tx:       tx,
		interval: interval,
	}
}

// Run emits snapshots until the context is cancelled.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Report()
		}
	}
}

// Report emits one snapshot immediately.
func (r *Reporter) Report() {
	st := r.ctrl.Servo()
	cmd := command.Status(command.ServoStatus{
		Position: st.Position,
		Enabled:  st.Enabled,
	}, r.store.Count())

	if err := r.tx.Send(cmd.Encode()); err != nil {
		log.Printf("Status report: %v", err)
	}
}
