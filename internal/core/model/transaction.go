package model

import (
	"github.com/mr-tron/base58"
)

const (
	// SignatureSize is the length of an ed25519 signature.
	SignatureSize = 64
	// PubkeySize is the length of an account address.
	PubkeySize = 32
	// HashSize is the length of a blockhash or message hash.
	HashSize = 32
)

// Signature is a transaction signature. Its text form is base58.
type Signature [SignatureSize]byte

func (s Signature) String() string { return base58.Encode(s[:]) }

// Pubkey is an account address.
type Pubkey [PubkeySize]byte

func (p Pubkey) String() string { return base58.Encode(p[:]) }

// Hash is a 32-byte digest, used for blockhashes and message hashes.
type Hash [HashSize]byte

func (h Hash) String() string { return base58.Encode(h[:]) }

// MessageVersion identifies the layout of a Message.
type MessageVersion uint8

const (
	// LegacyMessage has no version prefix and no address table lookups.
	LegacyMessage MessageVersion = iota
	// MessageV0 is prefixed with 0x80 and may carry address table lookups.
	MessageV0
)

// MessageHeader holds the account counts that classify AccountKeys.
type MessageHeader struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
}

// CompiledInstruction references its program and accounts by index into the
// message's full account list (static keys followed by loaded addresses).
type CompiledInstruction struct {
	ProgramIDIndex uint8
	Accounts       []uint8
	Data           []byte
}

// MessageAddressTableLookup selects addresses from an on-chain lookup table.
type MessageAddressTableLookup struct {
	AccountKey      Pubkey
	WritableIndexes []uint8
	ReadonlyIndexes []uint8
}

// Message is the signed part of a transaction.
type Message struct {
	Version             MessageVersion
	Header              MessageHeader
	AccountKeys         []Pubkey
	RecentBlockhash     Hash
	Instructions        []CompiledInstruction
	AddressTableLookups []MessageAddressTableLookup
}

// VersionedTransaction is a message plus the signatures over it.
type VersionedTransaction struct {
	Signatures []Signature
	Message    Message
}

// FirstSignature returns the signature that identifies the transaction.
func (tx *VersionedTransaction) FirstSignature() (Signature, bool) {
	if len(tx.Signatures) == 0 {
		return Signature{}, false
	}
	return tx.Signatures[0], true
}

// LoadedAddresses are the addresses resolved from a message's address table
// lookups, in lookup order.
type LoadedAddresses struct {
	Writable []Pubkey
	Readonly []Pubkey
}

// Len returns the total number of loaded addresses.
func (l LoadedAddresses) Len() int {
	return len(l.Writable) + len(l.Readonly)
}

// SanitizedTransaction is a transaction whose addresses have been resolved and
// whose message hash is known. Values are only produced by a validating
// constructor.
type SanitizedTransaction struct {
	Transaction     VersionedTransaction
	MessageHash     Hash
	LoadedAddresses LoadedAddresses
	IsSimpleVote    bool
}
