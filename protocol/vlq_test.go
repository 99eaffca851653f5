package protocol

import (
	"errors"
	"testing"
)

func TestVLQRoundTripInt(t *testing.T) {
	testCases := []struct {
		value int32
		size  int
	}{
		{0, 1},
		{1, 1},
		{-1, 1},
		{95, 1},
		{-32, 1},
		{96, 2},
		{-33, 2},
		{1000, 2},
		{-1000, 2},
		{65535, 3},
		{1000000, 3},
		{-1000000, 4},
		{1 << 30, 5},
		{-1 << 31, 5},
	}

	for _, tc := range testCases {
		out := NewScratchOutput()
		EncodeVLQInt(out, tc.value)
		encoded := out.Result()
		if len(encoded) != tc.size {
			t.Errorf("%d encoded to %d bytes, expected %d (%v)", tc.value, len(encoded), tc.size, encoded)
		}

		data := encoded
		decoded, err := DecodeVLQInt(&data)
		if err != nil {
			t.Errorf("Failed to decode %d: %v", tc.value, err)
			continue
		}
		if decoded != tc.value {
			t.Errorf("VLQ mismatch: expected %d, got %d (encoded as %v)", tc.value, decoded, encoded)
		}
		if len(data) != 0 {
			t.Errorf("Decoding %d left %d bytes", tc.value, len(data))
		}
	}
}

func TestVLQRoundTripUint(t *testing.T) {
	for _, expected := range []uint32{0, 127, 128, 1000, 65535, 1000000, 0x7FFFFFFF, 0x80000000, 0xFFFFFFFF} {
		out := NewScratchOutput()
		EncodeVLQUint(out, expected)

		data := out.Result()
		decoded, err := DecodeVLQUint(&data)
		if err != nil {
			t.Errorf("Failed to decode %d: %v", expected, err)
			continue
		}
		if decoded != expected {
			t.Errorf("VLQ mismatch: expected %d, got %d", expected, decoded)
		}
	}
}

func TestVLQString(t *testing.T) {
	for _, expected := range []string{"", "ok", "sched: overrun at 120ms, backlog 2"} {
		out := NewScratchOutput()
		EncodeVLQString(out, expected)

		data := out.Result()
		decoded, err := DecodeVLQString(&data)
		if err != nil {
			t.Errorf("Failed to decode %q: %v", expected, err)
			continue
		}
		if decoded != expected {
			t.Errorf("String mismatch: expected %q, got %q", expected, decoded)
		}
	}
}

func TestVLQTruncated(t *testing.T) {
	data := []byte{0x80}
	if _, err := DecodeVLQInt(&data); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}

	// Length prefix claims more bytes than present
	data = []byte{5, 'a', 'b'}
	if _, err := DecodeVLQString(&data); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}
}
