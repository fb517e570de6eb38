package convert_test

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txbridge/internal/convert"
	"txbridge/internal/core/model"
	"txbridge/internal/fault"
	"txbridge/internal/fixtures"
	"txbridge/pkg/wire"
)

func samplePacket(payload []byte, flags model.PacketFlags) *model.Packet {
	p := model.NewPacket()
	p.Meta.Size = copy(p.Buffer[:], payload)
	p.Meta.Addr = netip.MustParseAddr("192.168.1.20")
	p.Meta.Port = 8001
	p.Meta.Flags = flags
	return p
}

func TestPacketRoundTrip(t *testing.T) {
	flags := model.FlagForwarded | model.FlagRepair | model.FlagSimpleVoteTx | model.FlagTracerPacket
	p := samplePacket([]byte("transaction bytes"), flags)

	w, err := convert.PacketToWire(p)
	require.NoError(t, err)
	assert.Equal(t, []byte("transaction bytes"), w.Data)
	assert.Equal(t, uint64(17), w.Meta.Size)
	assert.Equal(t, "192.168.1.20", w.Meta.Addr)
	assert.Equal(t, uint32(8001), w.Meta.Port)
	assert.Equal(t, uint64(0), w.Meta.SenderStake)

	back := convert.PacketFromWire(w)
	assert.Equal(t, *p, *back)
}

func TestPacketToWireExportsAllFlags(t *testing.T) {
	p := samplePacket([]byte{1}, model.FlagFromStakedNode|model.FlagRoundCompute|model.FlagPerformedSigverify)

	w, err := convert.PacketToWire(p)
	require.NoError(t, err)
	assert.Equal(t, wire.PacketFlags{FromStakedNode: true}, *w.Meta.Flags)

	// from_staked_node is exported but never restored
	back := convert.PacketFromWire(w)
	assert.Equal(t, model.PacketFlags(0), back.Meta.Flags)
}

func TestPacketFromWireIgnoresDiscard(t *testing.T) {
	w := &wire.Packet{
		Data: []byte{1, 2},
		Meta: &wire.Meta{Size: 2, Addr: "1.1.1.1", Flags: &wire.PacketFlags{Discard: true, Forwarded: true}},
	}
	p := convert.PacketFromWire(w)
	assert.False(t, p.Meta.Discard())
	assert.True(t, p.Meta.Forwarded())
}

func TestPacketToWireDiscarded(t *testing.T) {
	p := samplePacket([]byte{1, 2, 3}, model.FlagDiscard)
	_, err := convert.PacketToWire(p)
	assert.True(t, errors.Is(err, fault.ErrDiscardedPacket))

	p = samplePacket([]byte{1, 2, 3}, 0)
	p.Meta.Size = model.PacketDataSize + 1
	_, err = convert.PacketToWire(p)
	assert.True(t, errors.Is(err, fault.ErrDiscardedPacket))
}

func TestPacketFromWireTruncates(t *testing.T) {
	data := make([]byte, 1600)
	for i := range data {
		data[i] = byte(i)
	}
	w := &wire.Packet{Data: data, Meta: &wire.Meta{Size: 1600, Addr: "10.1.1.1"}}

	p := convert.PacketFromWire(w)
	assert.Equal(t, data[:model.PacketDataSize], p.Buffer[:])
	assert.Equal(t, 1600, p.Meta.Size)
	_, ok := p.Data()
	assert.False(t, ok, "size beyond capacity has no valid payload")
}

func TestPacketFromWireBoundary(t *testing.T) {
	for _, n := range []int{model.PacketDataSize - 1, model.PacketDataSize, model.PacketDataSize + 1} {
		data := make([]byte, n)
		for i := range data {
			data[i] = 0xaa
		}
		p := convert.PacketFromWire(&wire.Packet{Data: data})

		copied := n
		if copied > model.PacketDataSize {
			copied = model.PacketDataSize
		}
		for i := 0; i < model.PacketDataSize; i++ {
			want := byte(0)
			if i < copied {
				want = 0xaa
			}
			if p.Buffer[i] != want {
				t.Fatalf("len %d: byte %d = %#x, want %#x", n, i, p.Buffer[i], want)
			}
		}
	}
}

func TestPacketFromWireAddress(t *testing.T) {
	cases := map[string]netip.Addr{
		"10.0.0.7":    netip.MustParseAddr("10.0.0.7"),
		"2001:db8::1": netip.MustParseAddr("2001:db8::1"),
		"not-an-ip":   model.UnspecifiedAddr,
		"":            model.UnspecifiedAddr,
	}
	for addr, want := range cases {
		p := convert.PacketFromWire(&wire.Packet{Meta: &wire.Meta{Addr: addr}})
		assert.Equal(t, want, p.Meta.Addr, addr)
	}
}

func TestPacketFromWirePortRange(t *testing.T) {
	cases := map[uint32]uint16{
		0:            0,
		8001:         8001,
		65535:        65535,
		65536:        0,
		8001 + 65536: 0,
	}
	for port, want := range cases {
		p := convert.PacketFromWire(&wire.Packet{Meta: &wire.Meta{Port: port}})
		assert.Equal(t, want, p.Meta.Port, "port %d", port)
	}
}

func TestPacketFromWireHugeSize(t *testing.T) {
	p := convert.PacketFromWire(&wire.Packet{Data: []byte{1, 2}, Meta: &wire.Meta{Size: 1 << 63}})
	assert.Greater(t, p.Meta.Size, model.PacketDataSize)

	_, ok := p.Data()
	assert.False(t, ok)
}

func TestPacketFromWireWithoutMeta(t *testing.T) {
	p := convert.PacketFromWire(&wire.Packet{Data: []byte{9, 9}})
	assert.Equal(t, model.DefaultMeta(), p.Meta)
	assert.Equal(t, byte(9), p.Buffer[1])
}

func TestTransactionWireRoundTrip(t *testing.T) {
	tx := fixtures.LegacyTransaction(7)

	w, err := convert.TransactionToWire(&tx)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", w.Meta.Addr)
	assert.Equal(t, uint64(len(w.Data)), w.Meta.Size)
	assert.Equal(t, wire.PacketFlags{}, *w.Meta.Flags)

	back, err := convert.TransactionFromWire(w)
	require.NoError(t, err)
	assert.Equal(t, tx, back)
}

func TestTransactionToWireTooLarge(t *testing.T) {
	tx := fixtures.LegacyTransaction(7)
	tx.Message.Instructions[0].Data = make([]byte, model.PacketDataSize)

	_, err := convert.TransactionToWire(&tx)
	assert.True(t, errors.Is(err, fault.ErrEncode))
}

func TestTransactionFromWireInvalid(t *testing.T) {
	_, err := convert.TransactionFromWire(&wire.Packet{Data: []byte{1, 2, 3}, Meta: &wire.Meta{Size: 3}})
	assert.True(t, errors.Is(err, fault.ErrDecode))

	tx := fixtures.LegacyTransaction(7)
	w, err := convert.TransactionToWire(&tx)
	require.NoError(t, err)
	w.Meta.Size = 5000
	_, err = convert.TransactionFromWire(w)
	assert.True(t, errors.Is(err, fault.ErrDecode))
}
