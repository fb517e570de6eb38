package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// ExpiringPacketBatch carries raw packets that expire ExpiryMs after the
// header timestamp.
type ExpiringPacketBatch struct {
	Header   *Header
	Batch    *PacketBatch
	ExpiryMs uint32
}

func (e *ExpiringPacketBatch) GetHeader() *Header {
	if e == nil {
		return nil
	}
	return e.Header
}

func (e *ExpiringPacketBatch) Marshal() ([]byte, error) {
	b, err := appendHeaderField(nil, 1, e.Header)
	if err != nil {
		return nil, err
	}
	if e.Batch != nil {
		inner, err := e.Batch.appendTo(nil)
		if err != nil {
			return nil, err
		}
		b = appendMessageField(b, 2, inner)
	}
	return appendVarintField(b, 3, uint64(e.ExpiryMs)), nil
}

func (e *ExpiringPacketBatch) Unmarshal(b []byte) error {
	*e = ExpiringPacketBatch{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			n, err := mergeHeaderField(&e.Header, b)
			return n, true, err
		case num == 2 && typ == protowire.BytesType:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, true, err
			}
			if e.Batch == nil {
				e.Batch = &PacketBatch{}
			}
			return n, true, e.Batch.merge(v)
		case num == 3 && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			e.ExpiryMs = uint32(v)
			return n, true, err
		}
		return 0, false, nil
	})
}

// ExpiringSanitizedBatch carries already resolved transactions that expire
// ExpiryMs after the header timestamp.
type ExpiringSanitizedBatch struct {
	Header   *Header
	Batch    *SanitizedTransactionBatch
	ExpiryMs uint32
}

func (e *ExpiringSanitizedBatch) GetHeader() *Header {
	if e == nil {
		return nil
	}
	return e.Header
}

func (e *ExpiringSanitizedBatch) Marshal() ([]byte, error) {
	b, err := appendHeaderField(nil, 1, e.Header)
	if err != nil {
		return nil, err
	}
	if e.Batch != nil {
		inner, err := e.Batch.appendTo(nil)
		if err != nil {
			return nil, err
		}
		b = appendMessageField(b, 2, inner)
	}
	return appendVarintField(b, 3, uint64(e.ExpiryMs)), nil
}

func (e *ExpiringSanitizedBatch) Unmarshal(b []byte) error {
	*e = ExpiringSanitizedBatch{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			n, err := mergeHeaderField(&e.Header, b)
			return n, true, err
		case num == 2 && typ == protowire.BytesType:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, true, err
			}
			if e.Batch == nil {
				e.Batch = &SanitizedTransactionBatch{}
			}
			return n, true, e.Batch.merge(v)
		case num == 3 && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			e.ExpiryMs = uint32(v)
			return n, true, err
		}
		return 0, false, nil
	})
}
