package glb

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrTruncated      = errors.New("glb: truncated data")
	ErrBadMagic       = errors.New("glb: invalid magic number")
	ErrBadVersion     = errors.New("glb: unsupported version")
	ErrLengthMismatch = errors.New("glb: declared length does not match buffer size")
)

// ValidationError reports which structural check failed.
type ValidationError struct {
	Check string // "header", "magic", "version", "length" or "chunk"
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s check failed: %v", e.Check, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks, in order, the magic number, the version and that the
// declared total length equals len(data). The first failing check is
// returned as a *ValidationError. On success the declared size is returned.
func Validate(data []byte) (uint32, error) {
	if len(data) < HeaderSize {
		return 0, &ValidationError{Check: "header", Err: fmt.Errorf("%w: %d bytes, need %d", ErrTruncated, len(data), HeaderSize)}
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != Magic {
		return 0, &ValidationError{Check: "magic", Err: fmt.Errorf("%w: got 0x%08X, want 0x%08X", ErrBadMagic, magic, Magic)}
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	if version != Version {
		return 0, &ValidationError{Check: "version", Err: fmt.Errorf("%w: got %d, want %d", ErrBadVersion, version, Version)}
	}

	length := binary.LittleEndian.Uint32(data[8:12])
	if uint64(length) != uint64(len(data)) {
		return 0, &ValidationError{Check: "length", Err: fmt.Errorf("%w: header declares %d, buffer has %d", ErrLengthMismatch, length, len(data))}
	}

	return length, nil
}
