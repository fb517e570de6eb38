package wire

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"

	"txbridge/internal/fault"
)

var tsMarshal = proto.MarshalOptions{Deterministic: true}

// Header mirrors shared.Header.
type Header struct {
	Ts *timestamppb.Timestamp
}

// NewHeader stamps a header with t.
func NewHeader(t time.Time) *Header {
	return &Header{Ts: timestamppb.New(t)}
}

func (h *Header) GetTs() *timestamppb.Timestamp {
	if h == nil {
		return nil
	}
	return h.Ts
}

func (h *Header) appendTo(b []byte) ([]byte, error) {
	if h.Ts == nil {
		return b, nil
	}
	ts, err := tsMarshal.Marshal(h.Ts)
	if err != nil {
		return nil, fmt.Errorf("%w: header timestamp: %v", fault.ErrEncode, err)
	}
	return appendMessageField(b, 1, ts), nil
}

func (h *Header) merge(b []byte) error {
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		if num != 1 || typ != protowire.BytesType {
			return 0, false, nil
		}
		v, n, err := consumeBytes(b)
		if err != nil {
			return 0, true, err
		}
		if h.Ts == nil {
			h.Ts = &timestamppb.Timestamp{}
		}
		if err := (proto.UnmarshalOptions{Merge: true}).Unmarshal(v, h.Ts); err != nil {
			return 0, true, decodeError(err)
		}
		return n, true, nil
	})
}

func (h *Header) Marshal() ([]byte, error) { return h.appendTo(nil) }

func (h *Header) Unmarshal(b []byte) error {
	*h = Header{}
	return h.merge(b)
}

// appendHeaderField emits h as field num when present.
func appendHeaderField(b []byte, num protowire.Number, h *Header) ([]byte, error) {
	if h == nil {
		return b, nil
	}
	inner, err := h.appendTo(nil)
	if err != nil {
		return nil, err
	}
	return appendMessageField(b, num, inner), nil
}

// mergeHeaderField decodes a header sub-message into *dst.
func mergeHeaderField(dst **Header, b []byte) (int, error) {
	v, n, err := consumeBytes(b)
	if err != nil {
		return 0, err
	}
	if *dst == nil {
		*dst = &Header{}
	}
	return n, (*dst).merge(v)
}
