package reader

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/kenshaw/evdev"
)

// HID implements CardReader for USB keyboard-wedge RFID readers: the
// scanner types the card id followed by Enter.
type HID struct {
	device *evdev.Evdev
}

// NewHID opens a keyboard-wedge reader. With an explicit device path the
// path is opened directly; otherwise the input devices are scanned for one
// matching the configured vendor/product id.
func NewHID(device string, vendor, product uint16) (*HID, error) {
	if device != "" {
		dev, err := evdev.OpenFile(device)
		if err != nil {
			return nil, fmt.Errorf("open evdev %s: %w", device, err)
		}
		return newHID(dev), nil
	}

	dev, err := findByID(vendor, product)
	if err != nil {
		return nil, err
	}
	return newHID(dev), nil
}

func newHID(dev *evdev.Evdev) *HID {
	log.Printf("Opened reader device: %s", dev.Name())
	log.Printf("Vendor: 0x%04x, Product: 0x%04x", dev.ID().Vendor, dev.ID().Product)
	return &HID{device: dev}
}

// findByID scans the input event devices for one with the given USB ids.
func findByID(vendor, product uint16) (*evdev.Evdev, error) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("scan input devices: %w", err)
	}

	for _, path := range paths {
		dev, err := evdev.OpenFile(path)
		if err != nil {
			continue
		}
		id := dev.ID()
		if id.Vendor == vendor && id.Product == product {
			return dev, nil
		}
		dev.Close()
	}
	return nil, fmt.Errorf("%w (vendor 0x%04x, product 0x%04x)", ErrNotFound, vendor, product)
}

// Read implements CardReader.Read. Key events are accumulated until Enter,
// then the collected bytes are returned as-is. No length or charset check
// happens here; an odd read just fails the authorization lookup later.
func (h *HID) Read(ctx context.Context) ([]byte, error) {
	ch := h.device.Poll(ctx)
	var buf []byte

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case event := <-ch:
			if event == nil {
				return nil, fmt.Errorf("reader device closed")
			}

			switch event.Type.(type) {
			case evdev.KeyType:
				if event.Value != 1 {
					continue
				}
				if event.Type == evdev.KeyEnter {
					if len(buf) == 0 {
						continue
					}
					return buf, nil
				}
				buf = append(buf, evdev.KeyType(event.Code).String()...)
			}
		}
	}
}

// Close implements CardReader.Close.
func (h *HID) Close() error {
	if h.device == nil {
		return nil
	}
	return h.device.Close()
}
