// Package sanitize provides the default validating constructor for
// sanitized transactions: a structural check of the message against its
// signatures and resolved addresses. Signature verification and program
// semantics belong to the execution engine.
package sanitize

import (
	"fmt"

	"github.com/mr-tron/base58"

	"txbridge/internal/core/model"
	"txbridge/internal/fault"
)

// maxAccounts is the number of accounts an instruction index can address.
const maxAccounts = 256

// maxSimpleVoteSignatures bounds the signer count of a simple vote.
const maxSimpleVoteSignatures = 2

var voteProgramID = mustPubkey("Vote111111111111111111111111111111111111111")

func mustPubkey(s string) model.Pubkey {
	b, err := base58.Decode(s)
	if err != nil || len(b) != model.PubkeySize {
		panic(fmt.Sprintf("invalid pubkey %q", s))
	}
	var k model.Pubkey
	copy(k[:], b)
	return k
}

// Factory implements convert.SanitizedFactory.
type Factory struct{}

// NewFactory returns the default factory.
func NewFactory() *Factory {
	return &Factory{}
}

// TryCreate validates tx and wraps it together with the precomputed hash and
// loaded addresses. The hash is not re-derived.
func (f *Factory) TryCreate(tx model.VersionedTransaction, messageHash model.Hash, loaded model.LoadedAddresses) (*model.SanitizedTransaction, error) {
	msg := &tx.Message

	if err := checkSignatures(&tx); err != nil {
		return nil, err
	}
	if err := checkHeader(msg); err != nil {
		return nil, err
	}
	if err := checkLookups(msg, loaded); err != nil {
		return nil, err
	}
	if err := checkInstructions(msg, len(msg.AccountKeys)+loaded.Len()); err != nil {
		return nil, err
	}
	if err := checkDuplicates(msg.AccountKeys, loaded.Writable, loaded.Readonly); err != nil {
		return nil, err
	}

	return &model.SanitizedTransaction{
		Transaction:     tx,
		MessageHash:     messageHash,
		LoadedAddresses: loaded,
		IsSimpleVote:    isSimpleVote(&tx),
	}, nil
}

func sanitizeError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", fault.ErrSanitize, fmt.Sprintf(format, args...))
}

func checkSignatures(tx *model.VersionedTransaction) error {
	required := int(tx.Message.Header.NumRequiredSignatures)
	switch {
	case len(tx.Signatures) < required:
		return sanitizeError("not enough signers: %d of %d", len(tx.Signatures), required)
	case len(tx.Signatures) > required:
		return sanitizeError("%d signatures for %d required signers", len(tx.Signatures), required)
	case len(tx.Signatures) > len(tx.Message.AccountKeys):
		return sanitizeError("%d signatures for %d accounts", len(tx.Signatures), len(tx.Message.AccountKeys))
	}
	return nil
}

func checkHeader(msg *model.Message) error {
	h := msg.Header
	keys := len(msg.AccountKeys)
	if keys == 0 {
		return sanitizeError("no account keys")
	}
	if int(h.NumRequiredSignatures)+int(h.NumReadonlyUnsignedAccounts) > keys {
		return sanitizeError("header counts exceed %d account keys", keys)
	}
	// the fee payer must be a writable signer
	if h.NumReadonlySignedAccounts >= h.NumRequiredSignatures {
		return sanitizeError("no writable signer")
	}
	return nil
}

func checkLookups(msg *model.Message, loaded model.LoadedAddresses) error {
	if msg.Version == model.LegacyMessage {
		if len(msg.AddressTableLookups) != 0 || loaded.Len() != 0 {
			return sanitizeError("legacy message with loaded addresses")
		}
		return nil
	}

	writable, readonly := 0, 0
	for i := range msg.AddressTableLookups {
		l := &msg.AddressTableLookups[i]
		if len(l.WritableIndexes)+len(l.ReadonlyIndexes) == 0 {
			return sanitizeError("lookup %d selects no addresses", i)
		}
		writable += len(l.WritableIndexes)
		readonly += len(l.ReadonlyIndexes)
	}
	if writable != len(loaded.Writable) || readonly != len(loaded.Readonly) {
		return sanitizeError("lookups select %d writable and %d readonly addresses, %d and %d loaded",
			writable, readonly, len(loaded.Writable), len(loaded.Readonly))
	}
	if len(msg.AccountKeys)+loaded.Len() > maxAccounts {
		return sanitizeError("%d accounts exceed %d", len(msg.AccountKeys)+loaded.Len(), maxAccounts)
	}
	return nil
}

func checkInstructions(msg *model.Message, total int) error {
	static := len(msg.AccountKeys)
	for i := range msg.Instructions {
		ix := &msg.Instructions[i]
		// programs cannot be loaded from a lookup table or pay fees
		if int(ix.ProgramIDIndex) >= static || ix.ProgramIDIndex == 0 {
			return sanitizeError("instruction %d: program index %d invalid", i, ix.ProgramIDIndex)
		}
		for _, a := range ix.Accounts {
			if int(a) >= total {
				return sanitizeError("instruction %d: account index %d out of range", i, a)
			}
		}
	}
	return nil
}

func checkDuplicates(lists ...[]model.Pubkey) error {
	seen := make(map[model.Pubkey]struct{})
	for _, keys := range lists {
		for _, k := range keys {
			if _, ok := seen[k]; ok {
				return sanitizeError("account %s loaded twice", k)
			}
			seen[k] = struct{}{}
		}
	}
	return nil
}

func isSimpleVote(tx *model.VersionedTransaction) bool {
	msg := &tx.Message
	if msg.Version != model.LegacyMessage || len(tx.Signatures) > maxSimpleVoteSignatures || len(msg.Instructions) != 1 {
		return false
	}
	return msg.AccountKeys[msg.Instructions[0].ProgramIDIndex] == voteProgramID
}
