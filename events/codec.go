package events

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Codec encodes envelopes into bytes and back. Implementations must keep the
// envelope field names "type", "timestamp" and "data".
type Codec interface {
	Name() string
	Encode(env wireEnvelope) ([]byte, error)
	Decode(data []byte) (Envelope, error)
	Unmarshal(data []byte, v any) error
}

// wireEnvelope is the encoded form shared by every codec.
type wireEnvelope struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// JSONCodec is the default, interoperable encoding.
type JSONCodec struct{}

// Name implements Codec.
func (JSONCodec) Name() string { return "json" }

// Encode implements Codec.
func (JSONCodec) Encode(env wireEnvelope) ([]byte, error) {
	return json.Marshal(env)
}

// Decode implements Codec.
func (c JSONCodec) Decode(data []byte) (Envelope, error) {
	var raw struct {
		Type      string          `json:"type"`
		Timestamp int64           `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Envelope{}, fmt.Errorf("decoding json envelope: %w", err)
	}
	env := Envelope{Type: raw.Type, Timestamp: raw.Timestamp, codec: c}
	if len(raw.Data) > 0 && !bytes.Equal(raw.Data, []byte("null")) {
		env.Data = raw.Data
	}
	return env, nil
}

// Unmarshal implements Codec.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// CBORCodec encodes the same envelope as CBOR. Field names come from the
// json struct tags, so both codecs carry identical keys.
type CBORCodec struct{}

// cborNull is the CBOR encoding of null.
var cborNull = []byte{0xf6}

// Name implements Codec.
func (CBORCodec) Name() string { return "cbor" }

// Encode implements Codec.
func (CBORCodec) Encode(env wireEnvelope) ([]byte, error) {
	return cbor.Marshal(env)
}

// Decode implements Codec.
func (c CBORCodec) Decode(data []byte) (Envelope, error) {
	var raw struct {
		Type      string          `json:"type"`
		Timestamp int64           `json:"timestamp"`
		Data      cbor.RawMessage `json:"data"`
	}
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return Envelope{}, fmt.Errorf("decoding cbor envelope: %w", err)
	}
	env := Envelope{Type: raw.Type, Timestamp: raw.Timestamp, codec: c}
	if len(raw.Data) > 0 && !bytes.Equal(raw.Data, cborNull) {
		env.Data = []byte(raw.Data)
	}
	return env, nil
}

// Unmarshal implements Codec.
func (CBORCodec) Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

// CodecByName returns the codec registered under name ("json" or "cbor").
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "cbor":
		return CBORCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
