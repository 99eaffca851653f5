package core

import (
	"strings"
	"testing"
)

func TestTimingRingOrderAndWrap(t *testing.T) {
	ClearTimingRing()
	defer ClearTimingRing()

	for i := uint32(0); i < TimingRingSize+5; i++ {
		RecordEvent(EvtDispatch, 0, i, 0)
	}

	events := TimingEvents()
	if len(events) != TimingRingSize {
		t.Fatalf("Expected %d events, got %d", TimingRingSize, len(events))
	}
	// Oldest five were overwritten
	for i, evt := range events {
		if evt.Value1 != uint32(i+5) {
			t.Errorf("Event %d: expected v1=%d, got %d", i, i+5, evt.Value1)
		}
	}
}

func TestTimingRingDisabled(t *testing.T) {
	ClearTimingRing()
	SetTimingEnabled(false)
	defer func() {
		SetTimingEnabled(true)
		ClearTimingRing()
	}()

	RecordEvent(EvtOverrun, 0, 1, 2)
	if len(TimingEvents()) != 0 {
		t.Error("Event recorded while capture disabled")
	}
}

func TestDumpTimingRing(t *testing.T) {
	ClearTimingRing()
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer func() {
		SetDebugWriter(func(string) {})
		ClearTimingRing()
	}()

	RecordEvent(EvtOverrun, 0, 120, 2)
	DumpTimingRing()

	if len(lines) != 3 {
		t.Fatalf("Expected header, one event and footer, got %v", lines)
	}
	if !strings.Contains(lines[1], "OVERRUN!") || !strings.Contains(lines[1], "v1=120") || !strings.Contains(lines[1], "v2=2") {
		t.Errorf("Unexpected dump line: %q", lines[1])
	}
}

func TestDebugPrintlnRespectsEnable(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")
	SetDebugEnabled(false)

	if len(lines) != 1 || lines[0] != "shown" {
		t.Errorf("Expected only the enabled message, got %v", lines)
	}
}

func TestUintFormatting(t *testing.T) {
	testCases := []struct {
		n        uint64
		expected string
	}{
		{0, "0"},
		{7, "7"},
		{1000, "1000"},
		{4294967295, "4294967295"},
		{18446744073709551615, "18446744073709551615"},
	}
	for _, tc := range testCases {
		if got := u64toa(tc.n); got != tc.expected {
			t.Errorf("u64toa(%d) = %q, expected %q", tc.n, got, tc.expected)
		}
	}
	if utoa(42) != "42" {
		t.Errorf("utoa(42) = %q", utoa(42))
	}
}
