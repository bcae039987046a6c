package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameSize is the maximum total frame size (opcode + payload).
const MaxFrameSize = 64 * 1024

// HeaderSize is the fixed TCP frame header: 4-byte big-endian length prefix
// (counting opcode + payload only) followed by a 2-byte big-endian opcode.
const HeaderSize = 4 + 2

// Frame is a decoded TCP frame: opcode plus its raw payload bytes.
type Frame struct {
	Opcode  Opcode
	Payload []byte
}

// WriteFrame encodes and writes a single frame to w:
// [4-byte length][2-byte opcode][payload].
// The length field counts opcode + payload only.
func WriteFrame(w io.Writer, opcode Opcode, payload []byte) error {
	bodyLen := 2 + len(payload)
	if bodyLen > MaxFrameSize {
		return fmt.Errorf("frame too large: %d bytes exceeds max %d", bodyLen, MaxFrameSize)
	}

	buf := make([]byte, 4+bodyLen)
	binary.BigEndian.PutUint32(buf[:4], uint32(bodyLen))
	binary.BigEndian.PutUint16(buf[4:6], uint16(opcode))
	copy(buf[6:], payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// ReadFrame reads one frame from r. Rejects frames whose length field
// exceeds MaxFrameSize without attempting to read the oversized payload.
func ReadFrame(r io.Reader) (Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Frame{}, fmt.Errorf("reading frame length: %w", err)
	}

	bodyLen := binary.BigEndian.Uint32(lenBuf[:])
	if bodyLen > MaxFrameSize {
		return Frame{}, fmt.Errorf("frame length %d exceeds max %d", bodyLen, MaxFrameSize)
	}
	if bodyLen < 2 {
		return Frame{}, fmt.Errorf("frame length %d too small for opcode", bodyLen)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return Frame{}, fmt.Errorf("reading frame body: %w", err)
	}

	return Frame{
		Opcode:  Opcode(binary.BigEndian.Uint16(body[:2])),
		Payload: body[2:],
	}, nil
}
