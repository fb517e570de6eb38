package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Bundle mirrors bundle.Bundle. Field 1 is unused.
type Bundle struct {
	Header  *Header
	Packets []*Packet
}

func (bu *Bundle) GetHeader() *Header {
	if bu == nil {
		return nil
	}
	return bu.Header
}

func (bu *Bundle) appendTo(b []byte) ([]byte, error) {
	b, err := appendHeaderField(b, 2, bu.Header)
	if err != nil {
		return nil, err
	}
	for i, p := range bu.Packets {
		if p == nil {
			return nil, nilElement("packet", i)
		}
		b = appendMessageField(b, 3, p.appendTo(nil))
	}
	return b, nil
}

func (bu *Bundle) merge(b []byte) error {
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		if typ != protowire.BytesType {
			return 0, false, nil
		}
		switch num {
		case 2:
			n, err := mergeHeaderField(&bu.Header, b)
			return n, true, err
		case 3:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, true, err
			}
			p := &Packet{}
			bu.Packets = append(bu.Packets, p)
			return n, true, p.merge(v)
		}
		return 0, false, nil
	})
}

func (bu *Bundle) Marshal() ([]byte, error) { return bu.appendTo(nil) }

func (bu *Bundle) Unmarshal(b []byte) error {
	*bu = Bundle{}
	return bu.merge(b)
}

// BundleUuid mirrors bundle.BundleUuid. Uuid is the content identifier
// derived from the bundle's transactions, not a random UUID.
type BundleUuid struct {
	Bundle *Bundle
	Uuid   string
}

func (bu *BundleUuid) GetBundle() *Bundle {
	if bu == nil {
		return nil
	}
	return bu.Bundle
}

func (bu *BundleUuid) Marshal() ([]byte, error) {
	var b []byte
	if bu.Bundle != nil {
		inner, err := bu.Bundle.appendTo(nil)
		if err != nil {
			return nil, err
		}
		b = appendMessageField(b, 1, inner)
	}
	return appendStringField(b, 2, bu.Uuid), nil
}

func (bu *BundleUuid) Unmarshal(b []byte) error {
	*bu = BundleUuid{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		if typ != protowire.BytesType {
			return 0, false, nil
		}
		switch num {
		case 1:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, true, err
			}
			if bu.Bundle == nil {
				bu.Bundle = &Bundle{}
			}
			return n, true, bu.Bundle.merge(v)
		case 2:
			v, n, err := consumeBytes(b)
			bu.Uuid = string(v)
			return n, true, err
		}
		return 0, false, nil
	})
}
