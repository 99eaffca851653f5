package protocol

import (
	"errors"
	"fmt"
)

// Telemetry message ids
const (
	MsgSchedStats   = 1
	MsgRunnableRuns = 2
	MsgLog          = 3
)

// LogMax is the longest log text that fits in one frame
const LogMax = MessagePayloadMax - 2

var (
	ErrUnknownMessage = errors.New("unknown telemetry message")
)

// SchedStats is the periodic dispatcher report
type SchedStats struct {
	TimeStamp  uint64
	Dispatches uint32
	Overruns   uint32
	MaxBacklog uint32
	Pending    uint32
	Ticks      uint32
}

// RunnableRuns reports how often one runnable has fired
type RunnableRuns struct {
	Index uint8
	Runs  uint32
}

// Message is a decoded telemetry payload. Exactly one of the typed fields
// is set, matching ID.
type Message struct {
	ID    uint32
	Stats *SchedStats
	Runs  *RunnableRuns
	Log   string
}

// EncodeSchedStats writes a sched_stats payload
func EncodeSchedStats(out OutputBuffer, s SchedStats) {
	EncodeVLQUint(out, MsgSchedStats)
	EncodeVLQUint(out, uint32(s.TimeStamp))
	EncodeVLQUint(out, uint32(s.TimeStamp>>32))
	EncodeVLQUint(out, s.Dispatches)
	EncodeVLQUint(out, s.Overruns)
	EncodeVLQUint(out, s.MaxBacklog)
	EncodeVLQUint(out, s.Pending)
	EncodeVLQUint(out, s.Ticks)
}

// EncodeRunnableRuns writes a runnable_runs payload
func EncodeRunnableRuns(out OutputBuffer, r RunnableRuns) {
	EncodeVLQUint(out, MsgRunnableRuns)
	EncodeVLQUint(out, uint32(r.Index))
	EncodeVLQUint(out, r.Runs)
}

// EncodeLog writes a log payload, cutting text at LogMax bytes
func EncodeLog(out OutputBuffer, text string) {
	if len(text) > LogMax {
		text = text[:LogMax]
	}
	EncodeVLQUint(out, MsgLog)
	EncodeVLQString(out, text)
}

// DecodeMessage parses one frame payload
func DecodeMessage(payload []byte) (Message, error) {
	data := payload
	id, err := DecodeVLQUint(&data)
	if err != nil {
		return Message{}, err
	}

	msg := Message{ID: id}
	switch id {
	case MsgSchedStats:
		var f [7]uint32
		for i := range f {
			if f[i], err = DecodeVLQUint(&data); err != nil {
				return Message{}, err
			}
		}
		msg.Stats = &SchedStats{
			TimeStamp:  uint64(f[1])<<32 | uint64(f[0]),
			Dispatches: f[2],
			Overruns:   f[3],
			MaxBacklog: f[4],
			Pending:    f[5],
			Ticks:      f[6],
		}
	case MsgRunnableRuns:
		index, err := DecodeVLQUint(&data)
		if err != nil {
			return Message{}, err
		}
		runs, err := DecodeVLQUint(&data)
		if err != nil {
			return Message{}, err
		}
		msg.Runs = &RunnableRuns{Index: uint8(index), Runs: runs}
	case MsgLog:
		if msg.Log, err = DecodeVLQString(&data); err != nil {
			return Message{}, err
		}
	default:
		return Message{}, fmt.Errorf("%w: id %d", ErrUnknownMessage, id)
	}
	return msg, nil
}
