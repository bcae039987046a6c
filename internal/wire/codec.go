package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// EncodePayload serializes a message struct into frame payload bytes.
// The spec allows any schemaed binary format all three services agree on;
// this repo uses encoding/gob rather than hand-rolled protobuf stubs (see
// DESIGN.md) — every message type is a plain exported struct registered
// once at package init via gob.Register when it is sent as an interface.
func EncodePayload(msg any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePayload deserializes frame payload bytes into msg (a pointer).
func DecodePayload(payload []byte, msg any) error {
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(msg); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}

// registerGobTypes registers concrete message types so they can round-trip
// through gob.Encoder/Decoder when referenced via an interface value.
func registerGobTypes(msgs ...any) {
	for _, m := range msgs {
		gob.Register(m)
	}
}
