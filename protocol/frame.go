package protocol

import (
	"bytes"
	"errors"
	"io"
)

var (
	ErrFrameTooLarge = errors.New("payload does not fit in one frame")
)

// FrameWriter frames payloads onto a byte stream and numbers them. It is
// not safe for concurrent use; the firmware writes from the dispatch loop.
type FrameWriter struct {
	w      io.Writer
	out    ScratchOutput
	seq    uint8
	frames uint32
}

// NewFrameWriter creates a writer for w
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame builds one frame with body as the payload and writes it in a
// single call. An oversized payload is rejected and uses no sequence number.
func (f *FrameWriter) WriteFrame(body func(out OutputBuffer)) error {
	f.out.Reset()
	f.out.Output([]byte{0, MessageDest | f.seq})
	body(&f.out)

	length := f.out.CurPosition() + MessageTrailerSize
	if f.out.Overflowed() || length > MessageLengthMax {
		return ErrFrameTooLarge
	}
	f.out.Update(MessagePositionLen, uint8(length))

	crc := CRC16(f.out.Result())
	f.out.Output([]byte{uint8(crc >> 8), uint8(crc), MessageValueSync})

	f.seq = (f.seq + 1) & MessageSeqMask
	if _, err := f.w.Write(f.out.Result()); err != nil {
		return err
	}
	f.frames++
	return nil
}

// Frames returns the number of frames written successfully
func (f *FrameWriter) Frames() uint32 {
	return f.frames
}

// Frame is one validated frame
type Frame struct {
	Sequence uint8 // Low four bits of the sequence byte
	Payload  []byte
}

// ReaderStats counts what a FrameReader saw on the wire
type ReaderStats struct {
	Frames    uint32 // Valid frames returned
	Lost      uint32 // Frames skipped according to sequence numbers
	CRCErrors uint32 // Frames dropped for a bad checksum
	Discarded uint32 // Bytes dropped while resynchronising
}

// FrameReader extracts frames from a byte stream. After any framing error
// it drops input up to the next sync byte and carries on.
type FrameReader struct {
	r     io.Reader
	fifo  *FifoBuffer
	chunk [MessageLengthMax]byte
	err   error

	synchronized bool
	haveSeq      bool
	nextSeq      uint8
	stats        ReaderStats
}

// NewFrameReader creates a reader for r
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{
		r:            r,
		fifo:         NewFifoBuffer(4 * MessageLengthMax),
		synchronized: true,
	}
}

// Next blocks until a valid frame arrives. Once the underlying reader fails,
// buffered frames are still returned before its error.
func (f *FrameReader) Next() (Frame, error) {
	for {
		if frame, ok := f.parse(); ok {
			return frame, nil
		}
		if f.err != nil {
			return Frame{}, f.err
		}
		n, err := f.r.Read(f.chunk[:])
		f.fifo.Write(f.chunk[:n])
		f.err = err
	}
}

// Stats returns the reader counters
func (f *FrameReader) Stats() ReaderStats {
	return f.stats
}

func (f *FrameReader) parse() (Frame, bool) {
	data := f.fifo.Data()
	consumed := 0
	drop := func(n int) {
		data = data[n:]
		consumed += n
	}

	for len(data) > 0 {
		if !f.synchronized {
			i := bytes.IndexByte(data, MessageValueSync)
			if i < 0 {
				f.stats.Discarded += uint32(len(data))
				drop(len(data))
				break
			}
			f.stats.Discarded += uint32(i)
			drop(i + 1)
			f.synchronized = true
			continue
		}

		if data[0] == MessageValueSync {
			drop(1)
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		seq := data[MessagePositionSeq]
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax || seq&^MessageSeqMask != MessageDest {
			f.synchronized = false
			continue
		}
		if len(data) < msgLen {
			break
		}
		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			f.synchronized = false
			continue
		}

		crc := uint16(data[msgLen-MessageTrailerCRC])<<8 | uint16(data[msgLen-MessageTrailerCRC+1])
		if crc != CRC16(data[:msgLen-MessageTrailerSize]) {
			f.stats.CRCErrors++
			f.synchronized = false
			continue
		}

		payload := make([]byte, msgLen-MessageLengthMin)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		drop(msgLen)
		f.fifo.Pop(consumed)

		frame := Frame{Sequence: seq & MessageSeqMask, Payload: payload}
		f.track(frame.Sequence)
		return frame, true
	}

	f.fifo.Pop(consumed)
	return Frame{}, false
}

// track counts gaps in the sequence. Sixteen or more consecutive losses
// alias and go unnoticed.
func (f *FrameReader) track(seq uint8) {
	if f.haveSeq {
		f.stats.Lost += uint32((seq - f.nextSeq) & MessageSeqMask)
	}
	f.nextSeq = (seq + 1) & MessageSeqMask
	f.haveSeq = true
	f.stats.Frames++
}
