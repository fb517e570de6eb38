// Package convert maps between native transaction types and their wire
// messages. Every function is pure and safe for concurrent use.
package convert

import (
	"fmt"
	"math"
	"net/netip"

	"txbridge/internal/codec"
	"txbridge/internal/core/model"
	"txbridge/internal/fault"
	"txbridge/pkg/wire"
)

// PacketToWire copies the valid payload and metadata of p. All flags with a
// wire field are exported; native-only flags are dropped. SenderStake is
// always zero.
func PacketToWire(p *model.Packet) (*wire.Packet, error) {
	data, ok := p.Data()
	if !ok {
		return nil, fault.ErrDiscardedPacket
	}

	meta := p.Meta
	return &wire.Packet{
		Data: append([]byte(nil), data...),
		Meta: &wire.Meta{
			Size: uint64(meta.Size),
			Addr: addrString(meta.Addr),
			Port: uint32(meta.Port),
			Flags: &wire.PacketFlags{
				Discard:        meta.Discard(),
				Forwarded:      meta.Forwarded(),
				Repair:         meta.Repair(),
				SimpleVoteTx:   meta.IsSimpleVoteTx(),
				TracerPacket:   meta.IsTracerPacket(),
				FromStakedNode: meta.IsFromStakedNode(),
			},
			SenderStake: 0,
		},
	}, nil
}

// PacketFromWire builds a native packet from p. Data beyond
// model.PacketDataSize is truncated, an unparsable address becomes
// model.UnspecifiedAddr and a port above 65535 becomes 0; none of these is
// an error. Size is kept even when it exceeds the buffer, which leaves the
// payload unavailable through Data. Only the simple vote,
// forwarded, tracer and repair flags are restored.
func PacketFromWire(p *wire.Packet) *model.Packet {
	out := model.NewPacket()
	if p == nil {
		return out
	}
	model.CopyBounded(out.Buffer[:], p.Data)

	meta := p.GetMeta()
	if meta == nil {
		return out
	}
	out.Meta.Size = sizeFromWire(meta.Size)
	out.Meta.Addr = parseAddr(meta.Addr)
	out.Meta.Port = portFromWire(meta.Port)
	if flags := meta.GetFlags(); flags != nil {
		out.Meta.SetFlag(model.FlagSimpleVoteTx, flags.SimpleVoteTx)
		out.Meta.SetFlag(model.FlagForwarded, flags.Forwarded)
		out.Meta.SetFlag(model.FlagTracerPacket, flags.TracerPacket)
		out.Meta.SetFlag(model.FlagRepair, flags.Repair)
	}
	return out
}

// PacketFromTransaction serializes tx into a packet with default metadata.
func PacketFromTransaction(tx *model.VersionedTransaction) (*model.Packet, error) {
	data, err := codec.EncodeTransaction(tx)
	if err != nil {
		return nil, err
	}
	if len(data) > model.PacketDataSize {
		return nil, fmt.Errorf("%w: transaction is %d bytes, packet holds %d", fault.ErrEncode, len(data), model.PacketDataSize)
	}

	p := model.NewPacket()
	p.Meta.Size = copy(p.Buffer[:], data)
	return p, nil
}

// TransactionToWire wraps tx in a packet and converts it.
func TransactionToWire(tx *model.VersionedTransaction) (*wire.Packet, error) {
	p, err := PacketFromTransaction(tx)
	if err != nil {
		return nil, err
	}
	return PacketToWire(p)
}

// TransactionFromWire recovers the transaction carried by p.
func TransactionFromWire(p *wire.Packet) (model.VersionedTransaction, error) {
	packet := PacketFromWire(p)
	data, ok := packet.Data()
	if !ok {
		return model.VersionedTransaction{}, fmt.Errorf("%w: packet payload of %d bytes is unavailable", fault.ErrDecode, packet.Meta.Size)
	}
	return codec.DecodeTransaction(data)
}

func addrString(a netip.Addr) string {
	if !a.IsValid() {
		a = model.UnspecifiedAddr
	}
	return a.String()
}

// sizeFromWire saturates instead of wrapping negative.
func sizeFromWire(s uint64) int {
	if s > math.MaxInt {
		return math.MaxInt
	}
	return int(s)
}

func portFromWire(p uint32) uint16 {
	if p > math.MaxUint16 {
		return 0
	}
	return uint16(p)
}

func parseAddr(s string) netip.Addr {
	a, err := netip.ParseAddr(s)
	if err != nil {
		return model.UnspecifiedAddr
	}
	return a
}
