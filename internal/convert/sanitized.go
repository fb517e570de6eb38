package convert

import (
	"fmt"

	"txbridge/internal/codec"
	"txbridge/internal/core/model"
	"txbridge/internal/fault"
	"txbridge/pkg/wire"
)

//go:generate mockgen -destination=mocks/sanitized.go -package=mocks txbridge/internal/convert SanitizedFactory

// SanitizedFactory is the execution engine's validating constructor. The
// message hash it receives is precomputed and must be trusted, not
// re-derived; loaded supplies the resolved lookup addresses.
type SanitizedFactory interface {
	TryCreate(tx model.VersionedTransaction, messageHash model.Hash, loaded model.LoadedAddresses) (*model.SanitizedTransaction, error)
}

// SanitizedMapper converts wire sanitized transactions back into native ones
// through a SanitizedFactory.
type SanitizedMapper struct {
	factory SanitizedFactory
}

// NewSanitizedMapper creates a mapper that validates with f.
func NewSanitizedMapper(f SanitizedFactory) *SanitizedMapper {
	return &SanitizedMapper{factory: f}
}

// SanitizedToWire encodes the transaction, its message hash and its loaded
// addresses.
func SanitizedToWire(tx *model.SanitizedTransaction) (*wire.SanitizedTransaction, error) {
	versioned, err := codec.EncodeTransaction(&tx.Transaction)
	if err != nil {
		return nil, fmt.Errorf("versioned transaction: %w", err)
	}
	loaded, err := codec.EncodeLoadedAddresses(&tx.LoadedAddresses)
	if err != nil {
		return nil, fmt.Errorf("loaded addresses: %w", err)
	}
	return &wire.SanitizedTransaction{
		VersionedTransaction: versioned,
		MessageHash:          append([]byte(nil), tx.MessageHash[:]...),
		LoadedAddresses:      loaded,
	}, nil
}

// FromWire decodes w and hands the parts to the validating constructor.
// Every failure wraps fault.ErrConversion along with its cause.
func (m *SanitizedMapper) FromWire(w *wire.SanitizedTransaction) (*model.SanitizedTransaction, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: %w: transaction is nil", fault.ErrConversion, fault.ErrDecode)
	}

	tx, err := codec.DecodeTransaction(w.VersionedTransaction)
	if err != nil {
		return nil, fmt.Errorf("%w: versioned transaction: %w", fault.ErrConversion, err)
	}

	if len(w.MessageHash) != model.HashSize {
		return nil, fmt.Errorf("%w: %w: got %d bytes", fault.ErrConversion, fault.ErrInvalidHashLength, len(w.MessageHash))
	}
	var hash model.Hash
	copy(hash[:], w.MessageHash)

	loaded, err := codec.DecodeLoadedAddresses(w.LoadedAddresses)
	if err != nil {
		return nil, fmt.Errorf("%w: loaded addresses: %w", fault.ErrConversion, err)
	}

	sanitized, err := m.factory.TryCreate(tx, hash, loaded)
	if err != nil {
		return nil, fmt.Errorf("%w: create sanitized transaction: %w", fault.ErrConversion, err)
	}
	return sanitized, nil
}
