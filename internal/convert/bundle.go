package convert

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"txbridge/internal/core/model"
	"txbridge/internal/fault"
	"txbridge/pkg/wire"
)

// bundleIDSeparator joins signatures before hashing. Other services derive
// the same id, so it is part of the wire contract.
const bundleIDSeparator = ","

// DeriveBundleID hashes the base58 first signature of each transaction, in
// order and comma separated, with SHA-256 and returns lowercase hex.
func DeriveBundleID(txs []model.VersionedTransaction) (string, error) {
	sigs := make([]string, 0, len(txs))
	for i := range txs {
		sig, ok := txs[i].FirstSignature()
		if !ok {
			return "", fmt.Errorf("%w: transaction %d", fault.ErrMissingSignature, i)
		}
		sigs = append(sigs, sig.String())
	}

	sum := sha256.Sum256([]byte(strings.Join(sigs, bundleIDSeparator)))
	return hex.EncodeToString(sum[:]), nil
}

// BuildBundle converts txs to wire packets in order and stamps the header
// with now.
func BuildBundle(txs []model.VersionedTransaction, now time.Time) (*wire.Bundle, error) {
	packets := make([]*wire.Packet, 0, len(txs))
	for i := range txs {
		p, err := TransactionToWire(&txs[i])
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		packets = append(packets, p)
	}
	return &wire.Bundle{
		Header:  wire.NewHeader(now),
		Packets: packets,
	}, nil
}

// BuildBundleUUID builds the bundle for txs together with its id.
func BuildBundleUUID(txs []model.VersionedTransaction, now time.Time) (*wire.BundleUuid, error) {
	bundle, err := BuildBundle(txs, now)
	if err != nil {
		return nil, err
	}
	id, err := DeriveBundleID(txs)
	if err != nil {
		return nil, err
	}
	return &wire.BundleUuid{Bundle: bundle, Uuid: id}, nil
}
