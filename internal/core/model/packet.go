package model

import (
	"net/netip"
)

// PacketDataSize is the capacity of a packet buffer: the IPv6 minimum MTU
// (1280) less the IPv6 (40) and UDP (8) headers.
const PacketDataSize = 1280 - 40 - 8

// PacketFlags is a bitset of per-packet markers.
type PacketFlags uint8

const (
	FlagDiscard PacketFlags = 1 << iota
	FlagForwarded
	FlagRepair
	FlagSimpleVoteTx
	FlagTracerPacket
	// FlagRoundCompute and FlagPerformedSigverify are local to this process
	// and have no wire representation.
	FlagRoundCompute
	FlagPerformedSigverify
	FlagFromStakedNode
)

// Has reports whether every bit in f is set.
func (p PacketFlags) Has(f PacketFlags) bool { return p&f == f }

// UnspecifiedAddr is used when a packet's source address is unknown.
var UnspecifiedAddr = netip.IPv4Unspecified()

// Meta describes where a packet came from and how it should be treated.
type Meta struct {
	Size  int
	Addr  netip.Addr
	Port  uint16
	Flags PacketFlags
}

// DefaultMeta returns metadata for a packet with no known origin.
func DefaultMeta() Meta {
	return Meta{Addr: UnspecifiedAddr}
}

func (m *Meta) SetFlag(f PacketFlags, on bool) {
	if on {
		m.Flags |= f
	} else {
		m.Flags &^= f
	}
}

func (m Meta) Discard() bool          { return m.Flags.Has(FlagDiscard) }
func (m Meta) Forwarded() bool        { return m.Flags.Has(FlagForwarded) }
func (m Meta) Repair() bool           { return m.Flags.Has(FlagRepair) }
func (m Meta) IsSimpleVoteTx() bool   { return m.Flags.Has(FlagSimpleVoteTx) }
func (m Meta) IsTracerPacket() bool   { return m.Flags.Has(FlagTracerPacket) }
func (m Meta) IsFromStakedNode() bool { return m.Flags.Has(FlagFromStakedNode) }

// Packet is a fixed-size datagram buffer plus metadata. Bytes past Meta.Size
// are zero.
type Packet struct {
	Buffer [PacketDataSize]byte
	Meta   Meta
}

// NewPacket returns an empty packet with default metadata.
func NewPacket() *Packet {
	return &Packet{Meta: DefaultMeta()}
}

// Data returns the valid payload. It reports false for discarded packets and
// for packets whose size does not fit the buffer.
func (p *Packet) Data() ([]byte, bool) {
	if p.Meta.Discard() || p.Meta.Size < 0 || p.Meta.Size > len(p.Buffer) {
		return nil, false
	}
	return p.Buffer[:p.Meta.Size], true
}

// CopyBounded copies min(len(dst), len(src)) bytes of src into dst and
// returns the count. Bytes of src that do not fit are dropped without error;
// the remainder of dst is left untouched.
func CopyBounded(dst, src []byte) int {
	n := len(src)
	if n > len(dst) {
		n = len(dst)
	}
	return copy(dst[:n], src[:n])
}
