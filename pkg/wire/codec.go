// Package wire holds the protobuf messages exchanged with other services.
//
// Each message carries its own codec built on protowire; field numbers are
// the compatibility contract and must not be reused or renumbered. Decoding
// skips unknown fields, so peers on older or newer schema revisions
// interoperate. Zero scalars are not emitted; a non-nil sub-message is
// always emitted, even when empty.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"txbridge/internal/fault"
)

// Message is implemented by every type in this package.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
}

// fieldFunc consumes the value of one field. It returns handled == false to
// have the field skipped.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (n int, handled bool, err error)

func decodeError(err error) error {
	return fmt.Errorf("%w: %v", fault.ErrDecode, err)
}

func decodeFields(b []byte, field fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return decodeError(protowire.ParseError(n))
		}
		b = b[n:]

		n, handled, err := field(num, typ, b)
		if err != nil {
			return err
		}
		if !handled {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return decodeError(protowire.ParseError(n))
			}
		}
		b = b[n:]
	}
	return nil
}

func consumeBytes(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, decodeError(protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, decodeError(protowire.ParseError(n))
	}
	return v, n, nil
}

// cloneBytes copies v so decoded messages never alias the input buffer.
func cloneBytes(v []byte) []byte {
	if len(v) == 0 {
		return nil
	}
	return append([]byte(nil), v...)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarintField(b, num, 1)
}

// nilElement reports a nil entry in a repeated message field.
func nilElement(field string, i int) error {
	return fmt.Errorf("%w: %s %d is nil", fault.ErrEncode, field, i)
}

func appendMessageField(b []byte, num protowire.Number, m []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m)
}

var (
	_ Message = (*PacketFlags)(nil)
	_ Message = (*Meta)(nil)
	_ Message = (*Packet)(nil)
	_ Message = (*PacketBatch)(nil)
	_ Message = (*Header)(nil)
	_ Message = (*SanitizedTransaction)(nil)
	_ Message = (*SanitizedTransactionBatch)(nil)
	_ Message = (*Bundle)(nil)
	_ Message = (*BundleUuid)(nil)
	_ Message = (*ExpiringPacketBatch)(nil)
	_ Message = (*ExpiringSanitizedBatch)(nil)
)
