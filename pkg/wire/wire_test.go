package wire_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"txbridge/internal/fault"
	"txbridge/pkg/wire"
)

func TestPacketFieldNumbers(t *testing.T) {
	p := &wire.Packet{
		Data: []byte{1, 2, 3},
		Meta: &wire.Meta{
			Size:  3,
			Addr:  "10.0.0.1",
			Port:  8001,
			Flags: &wire.PacketFlags{Forwarded: true, FromStakedNode: true},
		},
	}
	got, err := p.Marshal()
	require.NoError(t, err)

	var flags []byte
	flags = protowire.AppendTag(flags, 2, protowire.VarintType)
	flags = protowire.AppendVarint(flags, 1)
	flags = protowire.AppendTag(flags, 6, protowire.VarintType)
	flags = protowire.AppendVarint(flags, 1)

	var meta []byte
	meta = protowire.AppendTag(meta, 1, protowire.VarintType)
	meta = protowire.AppendVarint(meta, 3)
	meta = protowire.AppendTag(meta, 2, protowire.BytesType)
	meta = protowire.AppendString(meta, "10.0.0.1")
	meta = protowire.AppendTag(meta, 3, protowire.VarintType)
	meta = protowire.AppendVarint(meta, 8001)
	meta = protowire.AppendTag(meta, 4, protowire.BytesType)
	meta = protowire.AppendBytes(meta, flags)

	var want []byte
	want = protowire.AppendTag(want, 1, protowire.BytesType)
	want = protowire.AppendBytes(want, []byte{1, 2, 3})
	want = protowire.AppendTag(want, 2, protowire.BytesType)
	want = protowire.AppendBytes(want, meta)

	assert.Equal(t, want, got, "packet encoding")

	var decoded wire.Packet
	require.NoError(t, decoded.Unmarshal(got))
	assert.Equal(t, *p, decoded)
}

func TestUnknownFieldsSkipped(t *testing.T) {
	// a flags message from a newer revision carrying field 9
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)
	b = protowire.AppendTag(b, 9, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("future"))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)

	var flags wire.PacketFlags
	require.NoError(t, flags.Unmarshal(b))
	assert.Equal(t, wire.PacketFlags{Discard: true, SimpleVoteTx: true}, flags)
}

func TestOlderFlagsWithoutStakedNode(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)

	var flags wire.PacketFlags
	require.NoError(t, flags.Unmarshal(b))
	assert.True(t, flags.TracerPacket)
	assert.False(t, flags.FromStakedNode)
}

func TestBundleUuidRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 250, time.UTC)
	bu := &wire.BundleUuid{
		Bundle: &wire.Bundle{
			Header: wire.NewHeader(ts),
			Packets: []*wire.Packet{
				{Data: []byte{1}},
				{Data: []byte{2}, Meta: &wire.Meta{Size: 1}},
			},
		},
		Uuid: "abc",
	}
	b, err := bu.Marshal()
	require.NoError(t, err)

	var decoded wire.BundleUuid
	require.NoError(t, decoded.Unmarshal(b))
	assert.Equal(t, "abc", decoded.Uuid)
	require.Len(t, decoded.GetBundle().Packets, 2)
	assert.Equal(t, []byte{2}, decoded.Bundle.Packets[1].Data)
	assert.True(t, ts.Equal(decoded.Bundle.GetHeader().GetTs().AsTime()))
}

func TestExpiringBatchesRoundTrip(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	pb := &wire.ExpiringPacketBatch{
		Header:   wire.NewHeader(ts),
		Batch:    &wire.PacketBatch{Packets: []*wire.Packet{{Data: []byte{7}}}},
		ExpiryMs: 5000,
	}
	b, err := pb.Marshal()
	require.NoError(t, err)
	var gotPackets wire.ExpiringPacketBatch
	require.NoError(t, gotPackets.Unmarshal(b))
	assert.Equal(t, uint32(5000), gotPackets.ExpiryMs)
	assert.Len(t, gotPackets.Batch.Packets, 1)

	sb := &wire.ExpiringSanitizedBatch{
		Header: wire.NewHeader(ts),
		Batch: &wire.SanitizedTransactionBatch{Transactions: []*wire.SanitizedTransaction{
			{VersionedTransaction: []byte{1}, MessageHash: make([]byte, 32), LoadedAddresses: make([]byte, 16)},
		}},
		ExpiryMs: 10,
	}
	b, err = sb.Marshal()
	require.NoError(t, err)
	var gotSanitized wire.ExpiringSanitizedBatch
	require.NoError(t, gotSanitized.Unmarshal(b))
	assert.Equal(t, *sb.Batch.Transactions[0], *gotSanitized.Batch.Transactions[0])
	assert.True(t, ts.Equal(gotSanitized.Header.Ts.AsTime()))
}

func TestEmptyBatchIsPresent(t *testing.T) {
	pb := &wire.ExpiringPacketBatch{Batch: &wire.PacketBatch{}}
	b, err := pb.Marshal()
	require.NoError(t, err)

	var decoded wire.ExpiringPacketBatch
	require.NoError(t, decoded.Unmarshal(b))
	assert.NotNil(t, decoded.Batch, "empty batch must survive")
	assert.Nil(t, decoded.Header)
}

func TestTruncatedInput(t *testing.T) {
	p := &wire.Packet{Data: []byte{1, 2, 3, 4}}
	b, err := p.Marshal()
	require.NoError(t, err)

	var decoded wire.Packet
	err = decoded.Unmarshal(b[:len(b)-1])
	assert.True(t, errors.Is(err, fault.ErrDecode), "got %v", err)
}

func TestMarshalRejectsNilElements(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	cases := map[string]wire.Message{
		"packet batch": &wire.PacketBatch{Packets: []*wire.Packet{{Data: []byte{1}}, nil}},
		"bundle":       &wire.Bundle{Header: wire.NewHeader(ts), Packets: []*wire.Packet{nil}},
		"bundle uuid": &wire.BundleUuid{
			Bundle: &wire.Bundle{Packets: []*wire.Packet{nil}},
			Uuid:   "id",
		},
		"sanitized batch": &wire.SanitizedTransactionBatch{Transactions: []*wire.SanitizedTransaction{nil}},
		"expiring packets": &wire.ExpiringPacketBatch{
			Header: wire.NewHeader(ts),
			Batch:  &wire.PacketBatch{Packets: []*wire.Packet{nil}},
		},
		"expiring sanitized": &wire.ExpiringSanitizedBatch{
			Header: wire.NewHeader(ts),
			Batch:  &wire.SanitizedTransactionBatch{Transactions: []*wire.SanitizedTransaction{{}, nil}},
		},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			var b []byte
			var err error
			require.NotPanics(t, func() { b, err = m.Marshal() })
			assert.Nil(t, b)
			assert.True(t, errors.Is(err, fault.ErrEncode), "got %v", err)
		})
	}

	_, err := (&wire.PacketBatch{Packets: []*wire.Packet{{}, nil}}).Marshal()
	assert.Contains(t, err.Error(), "packet 1 is nil")
}
