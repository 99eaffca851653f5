// Package protocol implements the framed telemetry stream the firmware sends
// to the host monitor. Frames follow the Klipper block layout:
//
//	[len][0x10|seq][payload ...][crc hi][crc lo][0x7E]
//
// The payload is a VLQ message id followed by VLQ-encoded fields.
package protocol

// Version is the telemetry stream version
const Version = "0.1.0"

// Frame layout constants
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePayloadMax  = MessageLengthMax - MessageLengthMin
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
	MessageSeqMask     = 0x0F
)
