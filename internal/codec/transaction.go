// Package codec serializes native transactions with the compact binary
// layout shared by every service on the wire: compact-u16 list lengths,
// fixed-size keys, hashes and signatures, and a one-byte version prefix on
// versioned messages.
//
// Empty lists decode as nil slices.
package codec

import (
	"fmt"

	"lukechampine.com/blake3"

	"txbridge/internal/core/model"
	"txbridge/internal/fault"
)

// messageVersionPrefix marks a versioned message; the low seven bits carry
// the version number.
const messageVersionPrefix = 0x80

// messageHashDomain is prepended to message bytes before hashing.
const messageHashDomain = "solana-tx-message-v1"

// EncodeTransaction serializes tx. It fails with fault.ErrEncode only when tx
// holds something the layout cannot represent, such as a list longer than
// 65535 entries or a legacy header that collides with the version prefix.
func EncodeTransaction(tx *model.VersionedTransaction) ([]byte, error) {
	buf, err := appendShortVecLen(nil, len(tx.Signatures))
	if err != nil {
		return nil, fmt.Errorf("signatures: %w", err)
	}
	for i := range tx.Signatures {
		buf = append(buf, tx.Signatures[i][:]...)
	}
	return appendMessage(buf, &tx.Message)
}

// DecodeTransaction is the inverse of EncodeTransaction. The whole input must
// be consumed; anything malformed, truncated or trailing fails with
// fault.ErrDecode.
func DecodeTransaction(data []byte) (model.VersionedTransaction, error) {
	r := &reader{buf: data}
	var tx model.VersionedTransaction

	n, err := r.shortVecLen()
	if err != nil {
		return tx, err
	}
	if n > 0 {
		if r.remaining() < n*model.SignatureSize {
			return tx, r.errorf("%d signatures do not fit in %d bytes", n, r.remaining())
		}
		tx.Signatures = make([]model.Signature, n)
		for i := range tx.Signatures {
			b, _ := r.bytes(model.SignatureSize)
			copy(tx.Signatures[i][:], b)
		}
	}

	if err := readMessage(r, &tx.Message); err != nil {
		return model.VersionedTransaction{}, err
	}
	if err := r.finish(); err != nil {
		return model.VersionedTransaction{}, err
	}
	return tx, nil
}

// EncodeMessage serializes the signed part of a transaction.
func EncodeMessage(msg *model.Message) ([]byte, error) {
	return appendMessage(nil, msg)
}

// DecodeMessage is the inverse of EncodeMessage.
func DecodeMessage(data []byte) (model.Message, error) {
	r := &reader{buf: data}
	var msg model.Message
	if err := readMessage(r, &msg); err != nil {
		return model.Message{}, err
	}
	if err := r.finish(); err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

// MessageHash computes the hash a validator derives for msg.
func MessageHash(msg *model.Message) (model.Hash, error) {
	data, err := EncodeMessage(msg)
	if err != nil {
		return model.Hash{}, err
	}
	h := blake3.New(model.HashSize, nil)
	h.Write([]byte(messageHashDomain))
	h.Write(data)

	var out model.Hash
	copy(out[:], h.Sum(nil))
	return out, nil
}

func appendMessage(buf []byte, msg *model.Message) ([]byte, error) {
	switch msg.Version {
	case model.LegacyMessage:
		if msg.Header.NumRequiredSignatures&messageVersionPrefix != 0 {
			return nil, fmt.Errorf("%w: legacy message with %d required signatures", fault.ErrEncode, msg.Header.NumRequiredSignatures)
		}
		if len(msg.AddressTableLookups) != 0 {
			return nil, fmt.Errorf("%w: legacy message with address table lookups", fault.ErrEncode)
		}
	case model.MessageV0:
		buf = append(buf, messageVersionPrefix|0)
	default:
		return nil, fmt.Errorf("%w: unknown message version %d", fault.ErrEncode, msg.Version)
	}

	buf = append(buf,
		msg.Header.NumRequiredSignatures,
		msg.Header.NumReadonlySignedAccounts,
		msg.Header.NumReadonlyUnsignedAccounts,
	)

	buf, err := appendShortVecLen(buf, len(msg.AccountKeys))
	if err != nil {
		return nil, fmt.Errorf("account keys: %w", err)
	}
	for i := range msg.AccountKeys {
		buf = append(buf, msg.AccountKeys[i][:]...)
	}

	buf = append(buf, msg.RecentBlockhash[:]...)

	if buf, err = appendShortVecLen(buf, len(msg.Instructions)); err != nil {
		return nil, fmt.Errorf("instructions: %w", err)
	}
	for i := range msg.Instructions {
		ix := &msg.Instructions[i]
		buf = append(buf, ix.ProgramIDIndex)
		if buf, err = appendShortVecBytes(buf, ix.Accounts); err != nil {
			return nil, fmt.Errorf("instruction %d accounts: %w", i, err)
		}
		if buf, err = appendShortVecBytes(buf, ix.Data); err != nil {
			return nil, fmt.Errorf("instruction %d data: %w", i, err)
		}
	}

	if msg.Version == model.LegacyMessage {
		return buf, nil
	}

	if buf, err = appendShortVecLen(buf, len(msg.AddressTableLookups)); err != nil {
		return nil, fmt.Errorf("address table lookups: %w", err)
	}
	for i := range msg.AddressTableLookups {
		l := &msg.AddressTableLookups[i]
		buf = append(buf, l.AccountKey[:]...)
		if buf, err = appendShortVecBytes(buf, l.WritableIndexes); err != nil {
			return nil, fmt.Errorf("lookup %d writable indexes: %w", i, err)
		}
		if buf, err = appendShortVecBytes(buf, l.ReadonlyIndexes); err != nil {
			return nil, fmt.Errorf("lookup %d readonly indexes: %w", i, err)
		}
	}
	return buf, nil
}

func appendShortVecBytes(buf, b []byte) ([]byte, error) {
	buf, err := appendShortVecLen(buf, len(b))
	if err != nil {
		return nil, err
	}
	return append(buf, b...), nil
}

func readMessage(r *reader, msg *model.Message) error {
	first, err := r.byte()
	if err != nil {
		return err
	}

	if first&messageVersionPrefix != 0 {
		version := first &^ messageVersionPrefix
		if version != 0 {
			return r.errorf("unsupported message version %d", version)
		}
		msg.Version = model.MessageV0
		if first, err = r.byte(); err != nil {
			return err
		}
	} else {
		msg.Version = model.LegacyMessage
	}

	header, err := r.bytes(2)
	if err != nil {
		return err
	}
	msg.Header = model.MessageHeader{
		NumRequiredSignatures:       first,
		NumReadonlySignedAccounts:   header[0],
		NumReadonlyUnsignedAccounts: header[1],
	}

	if msg.AccountKeys, err = readPubkeys(r); err != nil {
		return err
	}

	blockhash, err := r.bytes(model.HashSize)
	if err != nil {
		return err
	}
	copy(msg.RecentBlockhash[:], blockhash)

	n, err := r.shortVecLen()
	if err != nil {
		return err
	}
	if n > 0 {
		// each instruction occupies at least three bytes
		if r.remaining() < 3*n {
			return r.errorf("%d instructions do not fit in %d bytes", n, r.remaining())
		}
		msg.Instructions = make([]model.CompiledInstruction, n)
		for i := range msg.Instructions {
			ix := &msg.Instructions[i]
			if ix.ProgramIDIndex, err = r.byte(); err != nil {
				return err
			}
			if ix.Accounts, err = r.shortVecBytes(); err != nil {
				return err
			}
			if ix.Data, err = r.shortVecBytes(); err != nil {
				return err
			}
		}
	}

	if msg.Version == model.LegacyMessage {
		return nil
	}

	if n, err = r.shortVecLen(); err != nil {
		return err
	}
	if n > 0 {
		if r.remaining() < (model.PubkeySize+2)*n {
			return r.errorf("%d lookups do not fit in %d bytes", n, r.remaining())
		}
		msg.AddressTableLookups = make([]model.MessageAddressTableLookup, n)
		for i := range msg.AddressTableLookups {
			l := &msg.AddressTableLookups[i]
			key, err := r.bytes(model.PubkeySize)
			if err != nil {
				return err
			}
			copy(l.AccountKey[:], key)
			if l.WritableIndexes, err = r.shortVecBytes(); err != nil {
				return err
			}
			if l.ReadonlyIndexes, err = r.shortVecBytes(); err != nil {
				return err
			}
		}
	}
	return nil
}

func readPubkeys(r *reader) ([]model.Pubkey, error) {
	n, err := r.shortVecLen()
	if err != nil || n == 0 {
		return nil, err
	}
	if r.remaining() < n*model.PubkeySize {
		return nil, r.errorf("%d keys do not fit in %d bytes", n, r.remaining())
	}
	keys := make([]model.Pubkey, n)
	for i := range keys {
		b, _ := r.bytes(model.PubkeySize)
		copy(keys[i][:], b)
	}
	return keys, nil
}
