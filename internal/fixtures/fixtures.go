// Package fixtures builds deterministic transactions for tests.
package fixtures

import (
	"crypto/ed25519"

	"txbridge/internal/codec"
	"txbridge/internal/core/model"
)

// Key derives a deterministic account address from seed.
func Key(seed byte) model.Pubkey {
	var k model.Pubkey
	for i := range k {
		k[i] = seed + byte(i)
	}
	return k
}

func signer(seed byte) ed25519.PrivateKey {
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed ^ byte(i*7)
	}
	return ed25519.NewKeyFromSeed(s)
}

// LegacyTransaction returns a signed single-transfer legacy transaction. Two
// calls with the same seed return equal transactions.
func LegacyTransaction(seed byte) model.VersionedTransaction {
	payer := signer(seed)
	var payerKey model.Pubkey
	copy(payerKey[:], payer.Public().(ed25519.PublicKey))

	msg := model.Message{
		Version: model.LegacyMessage,
		Header: model.MessageHeader{
			NumRequiredSignatures:       1,
			NumReadonlyUnsignedAccounts: 1,
		},
		AccountKeys:     []model.Pubkey{payerKey, Key(seed + 100), Key(0)},
		RecentBlockhash: model.Hash(Key(seed + 50)),
		Instructions: []model.CompiledInstruction{
			{ProgramIDIndex: 2, Accounts: []uint8{0, 1}, Data: []byte{2, 0, 0, 0, seed, 0, 0, 0, 0, 0, 0, 0}},
		},
	}
	return sign(msg, payer)
}

// V0Transaction returns a signed versioned transaction with one address
// table lookup, and the addresses that lookup resolves to.
func V0Transaction(seed byte) (model.VersionedTransaction, model.LoadedAddresses) {
	payer := signer(seed)
	var payerKey model.Pubkey
	copy(payerKey[:], payer.Public().(ed25519.PublicKey))

	msg := model.Message{
		Version: model.MessageV0,
		Header: model.MessageHeader{
			NumRequiredSignatures:       1,
			NumReadonlyUnsignedAccounts: 1,
		},
		AccountKeys:     []model.Pubkey{payerKey, Key(seed + 100), Key(0)},
		RecentBlockhash: model.Hash(Key(seed + 50)),
		Instructions: []model.CompiledInstruction{
			{ProgramIDIndex: 2, Accounts: []uint8{0, 1, 3, 4}, Data: []byte{9, seed}},
		},
		AddressTableLookups: []model.MessageAddressTableLookup{
			{AccountKey: Key(seed + 200), WritableIndexes: []uint8{0}, ReadonlyIndexes: []uint8{7}},
		},
	}
	loaded := model.LoadedAddresses{
		Writable: []model.Pubkey{Key(seed + 150)},
		Readonly: []model.Pubkey{Key(seed + 160)},
	}
	return sign(msg, payer), loaded
}

// Sanitized wraps tx as an already validated transaction with its computed
// message hash.
func Sanitized(tx model.VersionedTransaction, loaded model.LoadedAddresses) model.SanitizedTransaction {
	hash, err := codec.MessageHash(&tx.Message)
	if err != nil {
		panic(err)
	}
	return model.SanitizedTransaction{
		Transaction:     tx,
		MessageHash:     hash,
		LoadedAddresses: loaded,
	}
}

func sign(msg model.Message, key ed25519.PrivateKey) model.VersionedTransaction {
	data, err := codec.EncodeMessage(&msg)
	if err != nil {
		panic(err)
	}
	var sig model.Signature
	copy(sig[:], ed25519.Sign(key, data))
	return model.VersionedTransaction{
		Signatures: []model.Signature{sig},
		Message:    msg,
	}
}
