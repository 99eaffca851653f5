// Package serial carries telemetry frames between the board and the host
package serial

import (
	"context"
	"errors"
	"io"
	"time"
)

// Port is an open serial line
type Port interface {
	io.ReadWriteCloser

	// Flush discards data received but not yet read
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate; the firmware's UART runs at 115200
	Baud int

	// ReadTimeout bounds each read so a quiet line can be abandoned.
	// Zero blocks until data arrives.
	ReadTimeout time.Duration
}

// DefaultConfig returns the settings the firmware uses
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// Stream adapts a port opened with a read timeout into a blocking reader.
// Reads that time out with no data are retried until ctx is done, at which
// point Read returns ctx.Err().
func Stream(ctx context.Context, r io.Reader) io.Reader {
	return &stream{ctx: ctx, r: r}
}

type stream struct {
	ctx context.Context
	r   io.Reader
}

func (s *stream) Read(b []byte) (int, error) {
	for {
		if err := s.ctx.Err(); err != nil {
			return 0, err
		}
		n, err := s.r.Read(b)
		if n > 0 {
			return n, nil
		}
		// A timed out read surfaces as an empty read or EOF
		if err == nil || errors.Is(err, io.EOF) {
			continue
		}
		return 0, err
	}
}
