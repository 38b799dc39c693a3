package state

import (
	"fmt"

	"github.com/ugorji/go/codec"
)

// Records are serialized as canonical CBOR. Canonical field ordering
// keeps the encoding deterministic, so encoded records are stable
// across processes and safe to hash or diff.
var cborHandle = func() *codec.CborHandle {
	h := &codec.CborHandle{}
	h.Canonical = true
	return h
}()

// EncodeRecord serializes a record for storage.
func EncodeRecord(v any) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, cborHandle)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return buf, nil
}

// DecodeRecord deserializes a stored record.
func DecodeRecord(data []byte, v any) error {
	dec := codec.NewDecoderBytes(data, cborHandle)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}
