package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// PacketFlags mirrors packet.PacketFlags. FromStakedNode was added in a
// later revision; older peers skip it.
type PacketFlags struct {
	Discard        bool
	Forwarded      bool
	Repair         bool
	SimpleVoteTx   bool
	TracerPacket   bool
	FromStakedNode bool
}

func (f *PacketFlags) appendTo(b []byte) []byte {
	b = appendBoolField(b, 1, f.Discard)
	b = appendBoolField(b, 2, f.Forwarded)
	b = appendBoolField(b, 3, f.Repair)
	b = appendBoolField(b, 4, f.SimpleVoteTx)
	b = appendBoolField(b, 5, f.TracerPacket)
	b = appendBoolField(b, 6, f.FromStakedNode)
	return b
}

func (f *PacketFlags) merge(b []byte) error {
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		if typ != protowire.VarintType {
			return 0, false, nil
		}
		var dst *bool
		switch num {
		case 1:
			dst = &f.Discard
		case 2:
			dst = &f.Forwarded
		case 3:
			dst = &f.Repair
		case 4:
			dst = &f.SimpleVoteTx
		case 5:
			dst = &f.TracerPacket
		case 6:
			dst = &f.FromStakedNode
		default:
			return 0, false, nil
		}
		v, n, err := consumeVarint(b)
		*dst = protowire.DecodeBool(v)
		return n, true, err
	})
}

func (f *PacketFlags) Marshal() ([]byte, error) { return f.appendTo(nil), nil }

func (f *PacketFlags) Unmarshal(b []byte) error {
	*f = PacketFlags{}
	return f.merge(b)
}

// Meta mirrors packet.Meta. SenderStake is reserved and always zero when
// produced by this module.
type Meta struct {
	Size        uint64
	Addr        string
	Port        uint32
	Flags       *PacketFlags
	SenderStake uint64
}

func (m *Meta) GetFlags() *PacketFlags {
	if m == nil {
		return nil
	}
	return m.Flags
}

func (m *Meta) appendTo(b []byte) []byte {
	b = appendVarintField(b, 1, m.Size)
	b = appendStringField(b, 2, m.Addr)
	b = appendVarintField(b, 3, uint64(m.Port))
	if m.Flags != nil {
		b = appendMessageField(b, 4, m.Flags.appendTo(nil))
	}
	b = appendVarintField(b, 5, m.SenderStake)
	return b
}

func (m *Meta) merge(b []byte) error {
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			m.Size = v
			return n, true, err
		case num == 2 && typ == protowire.BytesType:
			v, n, err := consumeBytes(b)
			m.Addr = string(v)
			return n, true, err
		case num == 3 && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			m.Port = uint32(v)
			return n, true, err
		case num == 4 && typ == protowire.BytesType:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, true, err
			}
			if m.Flags == nil {
				m.Flags = &PacketFlags{}
			}
			return n, true, m.Flags.merge(v)
		case num == 5 && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			m.SenderStake = v
			return n, true, err
		}
		return 0, false, nil
	})
}

func (m *Meta) Marshal() ([]byte, error) { return m.appendTo(nil), nil }

func (m *Meta) Unmarshal(b []byte) error {
	*m = Meta{}
	return m.merge(b)
}

// Packet mirrors packet.Packet: raw transaction bytes plus optional metadata.
type Packet struct {
	Data []byte
	Meta *Meta
}

func (p *Packet) GetMeta() *Meta {
	if p == nil {
		return nil
	}
	return p.Meta
}

func (p *Packet) appendTo(b []byte) []byte {
	b = appendBytesField(b, 1, p.Data)
	if p.Meta != nil {
		b = appendMessageField(b, 2, p.Meta.appendTo(nil))
	}
	return b
}

func (p *Packet) merge(b []byte) error {
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		if typ != protowire.BytesType {
			return 0, false, nil
		}
		switch num {
		case 1:
			v, n, err := consumeBytes(b)
			p.Data = cloneBytes(v)
			return n, true, err
		case 2:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, true, err
			}
			if p.Meta == nil {
				p.Meta = &Meta{}
			}
			return n, true, p.Meta.merge(v)
		}
		return 0, false, nil
	})
}

func (p *Packet) Marshal() ([]byte, error) { return p.appendTo(nil), nil }

func (p *Packet) Unmarshal(b []byte) error {
	*p = Packet{}
	return p.merge(b)
}

// PacketBatch mirrors packet.PacketBatch.
type PacketBatch struct {
	Packets []*Packet
}

func (pb *PacketBatch) appendTo(b []byte) ([]byte, error) {
	for i, p := range pb.Packets {
		if p == nil {
			return nil, nilElement("packet", i)
		}
		b = appendMessageField(b, 1, p.appendTo(nil))
	}
	return b, nil
}

func (pb *PacketBatch) merge(b []byte) error {
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		if num != 1 || typ != protowire.BytesType {
			return 0, false, nil
		}
		v, n, err := consumeBytes(b)
		if err != nil {
			return 0, true, err
		}
		p := &Packet{}
		pb.Packets = append(pb.Packets, p)
		return n, true, p.merge(v)
	})
}

func (pb *PacketBatch) Marshal() ([]byte, error) { return pb.appendTo(nil) }

func (pb *PacketBatch) Unmarshal(b []byte) error {
	*pb = PacketBatch{}
	return pb.merge(b)
}
