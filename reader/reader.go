// Package reader produces raw credential reads from the RFID scanner
// hardware. Implementations block until one card read is available and
// hand back the raw payload bytes; decoding and authorization are the
// access controller's business.
package reader

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no matching reader device exists. Fatal at
// startup: without a reader there is nothing to gate.
var ErrNotFound = errors.New("rfid reader not found")

// CardReader is the interface for all RFID reader implementations.
type CardReader interface {
	// Read blocks until one card read is available or the context is
	// cancelled. Returns the raw payload bytes exactly as received.
	Read(ctx context.Context) ([]byte, error)

	// Close releases any resources held by the reader.
	Close() error
}

// Config holds common configuration for reader implementations.
type Config struct {
	Type   string `yaml:"type"`   // "hid", "serial"
	Device string `yaml:"device"` // e.g. "/dev/input/event0", "/dev/ttyUSB1"; empty = autodetect
	Baud   int    `yaml:"baud"`   // baud rate for serial readers
}

// New creates a CardReader based on the provided configuration. The
// vendor/product ids come from the access configuration and locate HID
// readers when no explicit device is given.
func New(cfg Config, vendor, product uint16) (CardReader, error) {
	switch cfg.Type {
	case "hid", "":
		return NewHID(cfg.Device, vendor, product)
	case "serial":
		return NewSerial(cfg.Device, cfg.Baud)
	default:
		return nil, fmt.Errorf("unknown reader type %q", cfg.Type)
	}
}
