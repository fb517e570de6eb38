package codec

import (
	"encoding/binary"
	"fmt"

	"txbridge/internal/core/model"
	"txbridge/internal/fault"
)

// EncodeLoadedAddresses writes the writable then readonly lists, each as a
// little-endian u64 count followed by the keys.
func EncodeLoadedAddresses(l *model.LoadedAddresses) ([]byte, error) {
	buf := make([]byte, 0, 16+model.PubkeySize*l.Len())
	buf = appendPubkeyList(buf, l.Writable)
	buf = appendPubkeyList(buf, l.Readonly)
	return buf, nil
}

// DecodeLoadedAddresses is the inverse of EncodeLoadedAddresses.
func DecodeLoadedAddresses(data []byte) (model.LoadedAddresses, error) {
	r := &reader{buf: data}
	var l model.LoadedAddresses
	var err error
	if l.Writable, err = readPubkeyList(r); err != nil {
		return model.LoadedAddresses{}, fmt.Errorf("writable: %w", err)
	}
	if l.Readonly, err = readPubkeyList(r); err != nil {
		return model.LoadedAddresses{}, fmt.Errorf("readonly: %w", err)
	}
	if err := r.finish(); err != nil {
		return model.LoadedAddresses{}, err
	}
	return l, nil
}

func appendPubkeyList(buf []byte, keys []model.Pubkey) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(keys)))
	for i := range keys {
		buf = append(buf, keys[i][:]...)
	}
	return buf
}

func readPubkeyList(r *reader) ([]model.Pubkey, error) {
	n, err := r.uint64LE()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if n > uint64(r.remaining()/model.PubkeySize) {
		return nil, fmt.Errorf("%w: %d keys do not fit in %d bytes", fault.ErrDecode, n, r.remaining())
	}
	keys := make([]model.Pubkey, n)
	for i := range keys {
		b, _ := r.bytes(model.PubkeySize)
		copy(keys[i][:], b)
	}
	return keys, nil
}
