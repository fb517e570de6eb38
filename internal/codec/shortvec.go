package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"txbridge/internal/fault"
)

// maxShortVecLength is the number of bytes a compact-u16 may occupy.
const maxShortVecLength = 3

// appendShortVecLen appends n as a compact-u16: 7 bits per byte, low bits
// first, high bit set on every byte but the last.
func appendShortVecLen(buf []byte, n int) ([]byte, error) {
	if n < 0 || n > math.MaxUint16 {
		return buf, fmt.Errorf("%w: length %d does not fit a compact-u16", fault.ErrEncode, n)
	}
	v := uint16(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(buf, b), nil
		}
		buf = append(buf, b|0x80)
	}
}

// reader walks an encoded buffer. Every failure wraps fault.ErrDecode.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: offset %d: %s", fault.ErrDecode, r.off, fmt.Sprintf(format, args...))
}

func (r *reader) byte() (byte, error) {
	if r.remaining() < 1 {
		return 0, r.errorf("unexpected end of input")
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, r.errorf("need %d bytes, have %d", n, r.remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) uint64LE() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// shortVecLen reads a compact-u16, rejecting aliased (zero continuation),
// overlong and overflowing encodings.
func (r *reader) shortVecLen() (int, error) {
	value := 0
	for i := 0; i < maxShortVecLength; i++ {
		b, err := r.byte()
		if err != nil {
			return 0, err
		}
		if b == 0 && i != 0 {
			return 0, r.errorf("non-canonical compact-u16")
		}
		if i == maxShortVecLength-1 && b > 0x03 {
			return 0, r.errorf("compact-u16 overflow")
		}
		value |= int(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return value, nil
		}
	}
	return 0, r.errorf("compact-u16 too long")
}

// shortVecBytes reads a compact-u16 length followed by that many bytes. The
// result is a copy; an empty list decodes as nil.
func (r *reader) shortVecBytes() ([]byte, error) {
	n, err := r.shortVecLen()
	if err != nil || n == 0 {
		return nil, err
	}
	b, err := r.bytes(n)
	if err != nil {
		return nil, err
	}
	return append([]byte{}, b...), nil
}

func (r *reader) finish() error {
	if r.remaining() != 0 {
		return r.errorf("%d trailing bytes", r.remaining())
	}
	return nil
}
