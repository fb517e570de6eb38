package convert

import (
	"fmt"
	"math"
	"time"

	"txbridge/internal/core/model"
	"txbridge/internal/fault"
	"txbridge/pkg/wire"
)

// headerTime returns the instant carried by h.
func headerTime(h *wire.Header) (time.Time, error) {
	ts := h.GetTs()
	if ts == nil {
		return time.Time{}, fault.ErrMissingHeader
	}
	if err := ts.CheckValid(); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", fault.ErrTimestamp, err)
	}
	return ts.AsTime(), nil
}

// expiryMs is the inverse of model.NewExpiringBatch's expiry computation.
func expiryMs(ts, expiresAt time.Time) (uint32, error) {
	d := expiresAt.Sub(ts)
	if d < 0 || d.Milliseconds() > math.MaxUint32 {
		return 0, fmt.Errorf("%w: expiry %v out of range", fault.ErrTimestamp, d)
	}
	return uint32(d.Milliseconds()), nil
}

// PacketBatchFromWire decodes the transaction carried by every packet of b.
// A nil packet or one whose payload does not decode fails the whole batch.
func PacketBatchFromWire(b *wire.ExpiringPacketBatch) (*model.ExpiringBatch[model.VersionedTransaction], error) {
	ts, err := headerTime(b.GetHeader())
	if err != nil {
		return nil, err
	}
	if b.Batch == nil {
		return nil, fault.ErrMissingBatch
	}

	txs := make([]model.VersionedTransaction, 0, len(b.Batch.Packets))
	for i, p := range b.Batch.Packets {
		if p == nil {
			return nil, fmt.Errorf("packet %d: %w: packet is nil", i, fault.ErrDecode)
		}
		tx, err := TransactionFromWire(p)
		if err != nil {
			return nil, fmt.Errorf("packet %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return model.NewExpiringBatch(ts, b.ExpiryMs, txs), nil
}

// PacketBatchToWire converts a native packet batch. Discarded packets fail
// the whole batch.
func PacketBatchToWire(b *model.ExpiringBatch[model.Packet]) (*wire.ExpiringPacketBatch, error) {
	ms, err := expiryMs(b.Timestamp, b.ExpiresAt)
	if err != nil {
		return nil, err
	}

	packets := make([]*wire.Packet, 0, len(b.Transactions))
	for i := range b.Transactions {
		p, err := PacketToWire(&b.Transactions[i])
		if err != nil {
			return nil, fmt.Errorf("packet %d: %w", i, err)
		}
		packets = append(packets, p)
	}
	return &wire.ExpiringPacketBatch{
		Header:   wire.NewHeader(b.Timestamp),
		Batch:    &wire.PacketBatch{Packets: packets},
		ExpiryMs: ms,
	}, nil
}

// BatchFromWire converts a sanitized batch, validating every transaction.
// The first failing transaction aborts the batch.
func (m *SanitizedMapper) BatchFromWire(b *wire.ExpiringSanitizedBatch) (*model.ExpiringBatch[model.SanitizedTransaction], error) {
	ts, err := headerTime(b.GetHeader())
	if err != nil {
		return nil, err
	}
	if b.Batch == nil {
		return nil, fault.ErrMissingBatch
	}

	txs := make([]model.SanitizedTransaction, 0, len(b.Batch.Transactions))
	for i, w := range b.Batch.Transactions {
		tx, err := m.FromWire(w)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		txs = append(txs, *tx)
	}
	return model.NewExpiringBatch(ts, b.ExpiryMs, txs), nil
}

// SanitizedBatchToWire converts a native sanitized batch.
func SanitizedBatchToWire(b *model.ExpiringBatch[model.SanitizedTransaction]) (*wire.ExpiringSanitizedBatch, error) {
	ms, err := expiryMs(b.Timestamp, b.ExpiresAt)
	if err != nil {
		return nil, err
	}

	txs := make([]*wire.SanitizedTransaction, 0, len(b.Transactions))
	for i := range b.Transactions {
		w, err := SanitizedToWire(&b.Transactions[i])
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		txs = append(txs, w)
	}
	return &wire.ExpiringSanitizedBatch{
		Header:   wire.NewHeader(b.Timestamp),
		Batch:    &wire.SanitizedTransactionBatch{Transactions: txs},
		ExpiryMs: ms,
	}, nil
}
