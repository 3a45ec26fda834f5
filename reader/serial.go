package reader

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// Serial implements CardReader for RFID scanners that emit one card id per
// line on a serial port.
type Serial struct {
	port   *serial.Port
	device string
	rest   []byte
}

// NewSerial opens a line-oriented serial RFID reader.
func NewSerial(device string, baud int) (*Serial, error) {
	if baud == 0 {
		baud = 9600
	}
	c := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: time.Second,
	}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return &Serial{port: port, device: device}, nil
}

// Read implements CardReader.Read. Bytes are accumulated until a newline;
// the line is returned raw, terminator excluded.
func (s *Serial) Read(ctx context.Context) ([]byte, error) {
	buf := make([]byte, 64)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if i := bytes.IndexByte(s.rest, '\n'); i >= 0 {
			line := s.rest[:i]
			s.rest = append([]byte(nil), s.rest[i+1:]...)
			return line, nil
		}

		n, err := s.port.Read(buf)
		if err != nil || n == 0 {
			// Timeout, poll again.
			time.Sleep(100 * time.Millisecond)
			continue
		}
		s.rest = append(s.rest, buf[:n]...)
	}
}

// Close implements CardReader.Close.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}
