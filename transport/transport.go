// Package transport owns the serial link to the actuator controller.
//
// The link is one-way and shared: the access controller, the status
// reporter and the console all send through it. A Link serializes writers
// so a line, once started, reaches the wire intact.
package transport

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// ErrNoPort is returned by Detect when no candidate serial device opens.
var ErrNoPort = errors.New("no serial port found")

// Sender is the write side of the channel to the actuator hardware.
type Sender interface {
	// Send writes one encoded command line. Failures are returned to the
	// caller; the link itself never retries.
	Send(line []byte) error

	// Close releases the underlying device. Call exactly once, after all
	// senders have stopped.
	Close() error
}

// Link wraps a byte-oriented duplex device with an exclusive-write
// discipline.
type Link struct {
	mu     sync.Mutex
	w      io.WriteCloser
	device string
}

// NewLink wraps an already-open device. Used directly in tests; production
// code goes through Open or Detect.
func NewLink(w io.WriteCloser, device string) *Link {
	return &Link{w: w, device: device}
}

// Open opens the named serial device at the given baud rate.
func Open(device string, baud int) (*Link, error) {
	c := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: time.Second,
	}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return NewLink(port, device), nil
}

// Detect probes the usual serial device names and returns a link on the
// first one that opens. The actuator is assumed either present or absent
// for the whole session.
func Detect(baud int) (*Link, error) {
	patterns := []string{"/dev/ttyACM*", "/dev/ttyUSB*", "/dev/serial*"}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, device := range matches {
			link, err := Open(device, baud)
			if err != nil {
				continue
			}
			return link, nil
		}
	}
	return nil, ErrNoPort
}

// Device returns the device path the link was opened on.
func (l *Link) Device() string {
	return l.device
}

// Send implements Sender. Concurrent callers are serialized; each line is
// fully written before the next sender proceeds.
func (l *Link) Send(line []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for len(line) > 0 {
		n, err := l.w.Write(line)
		if err != nil {
			return fmt.Errorf("write %s: %w", l.device, err)
		}
		line = line[n:]
	}
	return nil
}

// Close implements Sender.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Close()
}
