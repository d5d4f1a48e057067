package protocol

import (
	"encoding/json"
	"fmt"
)

// EnumFormat selects how the envelope's PacketType is rendered on the
// wire: as an integer ordinal or as its PascalCase name. Chosen once per
// connection at handshake and remembered in its serialization context.
// Only the type field follows this choice; enum fields inside payloads
// (directions, item kinds, zone status) are always written as strings.
type EnumFormat int

const (
	EnumAsInt EnumFormat = iota
	EnumAsString
)

// ParseEnumFormat reads the handshake's enumSerializationFormat query value.
func ParseEnumFormat(s string) EnumFormat {
	if s == "string" {
		return EnumAsString
	}
	return EnumAsInt
}

// Codec encodes and decodes packets for one connection according to its
// negotiated enum format.
type Codec struct {
	Format EnumFormat
}

// NewCodec builds a codec for the given format.
func NewCodec(format EnumFormat) *Codec {
	return &Codec{Format: format}
}

// Encode wraps payload in an envelope tagged with kind, rendering the type
// field per the codec's negotiated format.
func (c *Codec) Encode(kind PacketType, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode payload for %s: %w", kind, err)
	}

	var typeField interface{}
	if c.Format == EnumAsString {
		typeField = kind.String()
	} else {
		typeField = int(kind)
	}

	raw := struct {
		Type    interface{}     `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}{Type: typeField, Payload: payloadBytes}

	out, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode envelope for %s: %w", kind, err)
	}
	return out, nil
}

// Decode unwraps a raw frame into its packet kind and raw payload, for the
// dispatcher to further validate and parse.
func (c *Codec) Decode(frame []byte) (PacketType, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return 0, nil, fmt.Errorf("protocol: malformed envelope: %w", err)
	}
	kind, ok := ParsePacketType(env.Type)
	if !ok {
		return 0, nil, fmt.Errorf("protocol: unrecognized packet type %s", env.Type)
	}
	return kind, env.Payload, nil
}
