package wire

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Name  string
	Level int32
}

func TestFrameRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		opcode  Opcode
		payload samplePayload
	}{
		{"login request", OpLoginRequest, samplePayload{Name: "neo", Level: 1}},
		{"enter world", OpEnterWorld, samplePayload{Name: "Gandalf", Level: 42}},
		{"heartbeat", OpHeartbeat, samplePayload{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodePayload(tc.payload)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, WriteFrame(&buf, tc.opcode, encoded))

			frame, err := ReadFrame(&buf)
			require.NoError(t, err)
			require.Equal(t, tc.opcode, frame.Opcode)

			var decoded samplePayload
			require.NoError(t, DecodePayload(frame.Payload, &decoded))
			require.Equal(t, tc.payload, decoded)
		})
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	// Hand-craft a header claiming a body larger than MaxFrameSize.
	oversized := MaxFrameSize + 1
	header := []byte{
		byte(oversized >> 24), byte(oversized >> 16), byte(oversized >> 8), byte(oversized),
	}
	buf.Write(header)

	_, err := ReadFrame(&buf)
	require.Error(t, err)
}

func TestWriteFrameRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	payload := bytes.Repeat([]byte{0x01}, MaxFrameSize)
	err := WriteFrame(&buf, OpChatMessage, payload)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "too large"))
}

func TestReadFrameRejectsEmptyBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, OpHeartbeat, nil))
	// Truncate the opcode down to nothing by rewriting a length of 0.
	var zeroLen bytes.Buffer
	zeroLen.Write([]byte{0, 0, 0, 0})
	_, err := ReadFrame(&zeroLen)
	require.Error(t, err)
}
