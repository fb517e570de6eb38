package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// SanitizedTransaction mirrors sanitized.SanitizedTransaction. All three
// fields are opaque binary encodings; MessageHash must be 32 bytes for the
// message to convert.
type SanitizedTransaction struct {
	VersionedTransaction []byte
	MessageHash          []byte
	LoadedAddresses      []byte
}

func (s *SanitizedTransaction) appendTo(b []byte) []byte {
	b = appendBytesField(b, 1, s.VersionedTransaction)
	b = appendBytesField(b, 2, s.MessageHash)
	b = appendBytesField(b, 3, s.LoadedAddresses)
	return b
}

func (s *SanitizedTransaction) merge(b []byte) error {
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		if typ != protowire.BytesType {
			return 0, false, nil
		}
		var dst *[]byte
		switch num {
		case 1:
			dst = &s.VersionedTransaction
		case 2:
			dst = &s.MessageHash
		case 3:
			dst = &s.LoadedAddresses
		default:
			return 0, false, nil
		}
		v, n, err := consumeBytes(b)
		*dst = cloneBytes(v)
		return n, true, err
	})
}

func (s *SanitizedTransaction) Marshal() ([]byte, error) { return s.appendTo(nil), nil }

func (s *SanitizedTransaction) Unmarshal(b []byte) error {
	*s = SanitizedTransaction{}
	return s.merge(b)
}

// SanitizedTransactionBatch is an ordered list of sanitized transactions.
type SanitizedTransactionBatch struct {
	Transactions []*SanitizedTransaction
}

func (sb *SanitizedTransactionBatch) appendTo(b []byte) ([]byte, error) {
	for i, tx := range sb.Transactions {
		if tx == nil {
			return nil, nilElement("transaction", i)
		}
		b = appendMessageField(b, 1, tx.appendTo(nil))
	}
	return b, nil
}

func (sb *SanitizedTransactionBatch) merge(b []byte) error {
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool, error) {
		if num != 1 || typ != protowire.BytesType {
			return 0, false, nil
		}
		v, n, err := consumeBytes(b)
		if err != nil {
			return 0, true, err
		}
		tx := &SanitizedTransaction{}
		sb.Transactions = append(sb.Transactions, tx)
		return n, true, tx.merge(v)
	})
}

func (sb *SanitizedTransactionBatch) Marshal() ([]byte, error) { return sb.appendTo(nil) }

func (sb *SanitizedTransactionBatch) Unmarshal(b []byte) error {
	*sb = SanitizedTransactionBatch{}
	return sb.merge(b)
}
