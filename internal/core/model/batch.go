package model

import "time"

// ExpiringBatch is a group of transactions that must be acted upon before
// ExpiresAt. T is either Packet or SanitizedTransaction.
type ExpiringBatch[T any] struct {
	Timestamp    time.Time
	ExpiresAt    time.Time
	Transactions []T
}

// NewExpiringBatch computes the absolute expiry from ts and a relative expiry
// in milliseconds.
func NewExpiringBatch[T any](ts time.Time, expiryMs uint32, txs []T) *ExpiringBatch[T] {
	return &ExpiringBatch[T]{
		Timestamp:    ts,
		ExpiresAt:    ts.Add(time.Duration(expiryMs) * time.Millisecond),
		Transactions: txs,
	}
}

// Expired reports whether now is past the batch expiry.
func (b *ExpiringBatch[T]) Expired(now time.Time) bool {
	return now.After(b.ExpiresAt)
}
