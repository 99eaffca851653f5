package serial

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

// quietReader times out a few times before each chunk of data
type quietReader struct {
	chunks  [][]byte
	timeout int
	err     error
}

func (q *quietReader) Read(b []byte) (int, error) {
	if q.timeout > 0 {
		q.timeout--
		if q.timeout%2 == 0 {
			return 0, io.EOF
		}
		return 0, nil
	}
	if len(q.chunks) == 0 {
		return 0, q.err
	}
	q.timeout = 3
	n := copy(b, q.chunks[0])
	q.chunks = q.chunks[1:]
	return n, nil
}

func TestStreamSkipsTimeouts(t *testing.T) {
	q := &quietReader{
		chunks:  [][]byte{{1, 2}, {3}},
		timeout: 2,
		err:     io.ErrClosedPipe,
	}
	s := Stream(context.Background(), q)

	buf := make([]byte, 8)
	n, err := s.Read(buf)
	if err != nil || n != 2 || buf[0] != 1 || buf[1] != 2 {
		t.Fatalf("First read returned %v %v", buf[:n], err)
	}
	n, err = s.Read(buf)
	if err != nil || n != 1 || buf[0] != 3 {
		t.Fatalf("Second read returned %v %v", buf[:n], err)
	}
	if _, err := s.Read(buf); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Expected the port error, got %v", err)
	}
}

func TestStreamStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// Never returns data
	q := &quietReader{timeout: 1 << 30}
	if _, err := Stream(ctx, q).Read(make([]byte, 4)); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	if cfg.Device != "/dev/ttyUSB0" || cfg.Baud != 115200 || cfg.ReadTimeout != 100*time.Millisecond {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
}
