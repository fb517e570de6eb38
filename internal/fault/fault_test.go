package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"txbridge/internal/fault"
)

func TestClasses(t *testing.T) {
	assert.True(t, fault.IsErrInvalid(fault.ErrDecode), "decode should be invalid")
	assert.True(t, fault.IsErrProcess(fault.ErrEncode), "encode should be process")
	assert.False(t, fault.IsErrInvalid(fault.ErrConversion), "conversion is not invalid")
	assert.False(t, fault.IsErrInvalid(nil))
	assert.False(t, fault.IsErrProcess(errors.New("plain")))
}

func TestClassesThroughWrapping(t *testing.T) {
	decode := fmt.Errorf("packet 3: %w: unexpected end of input", fault.ErrDecode)
	assert.True(t, fault.IsErrInvalid(decode))
	assert.False(t, fault.IsErrProcess(decode))

	encode := fmt.Errorf("transaction 0: %w: 70000 items", fault.ErrEncode)
	assert.True(t, fault.IsErrProcess(encode))
	assert.False(t, fault.IsErrInvalid(encode))

	both := fmt.Errorf("%w: loaded addresses: %w", fault.ErrConversion, decode)
	assert.True(t, fault.IsErrProcess(both))
	assert.True(t, fault.IsErrInvalid(both))
}

func TestWrapped(t *testing.T) {
	err := fmt.Errorf("%w: versioned transaction: %w", fault.ErrConversion, fault.ErrDecode)
	assert.True(t, errors.Is(err, fault.ErrConversion))
	assert.True(t, errors.Is(err, fault.ErrDecode))
	assert.False(t, errors.Is(err, fault.ErrEncode))
	assert.Equal(t, "conversion failed: versioned transaction: decode failed", err.Error())
}
