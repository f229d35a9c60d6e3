package wasm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrOverflow is returned when a LEB128 value exceeds the maximum size.
var ErrOverflow = errors.New("leb128: overflow")

// ErrUnexpectedEOF is returned when a read runs past the end of the input.
var ErrUnexpectedEOF = errors.New("unexpected end of input")

// ErrCountTooLarge is returned when a vector declares more elements than
// the remaining input could hold.
var ErrCountTooLarge = errors.New("vector length exceeds remaining input")

// reader walks a byte slice with position tracking for error messages.
type reader struct {
	data []byte
	pos  int
	base int // offset of data within the whole module
}

func newReader(data []byte, base int) *reader {
	return &reader{data: data, base: base}
}

func (r *reader) done() bool {
	return r.pos >= len(r.data)
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.wrapError(ErrUnexpectedEOF)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if n < 0 || len(r.data)-r.pos < n {
		return nil, r.wrapError(ErrUnexpectedEOF)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// readU32 reads an unsigned LEB128 encoded uint32.
func (r *reader) readU32() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
}

// readU64 reads an unsigned LEB128 encoded uint64.
func (r *reader) readU64() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 70 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
}

// readCount reads a vector length. Every element takes at least one byte,
// so a length beyond the remaining input is rejected before anything is
// allocated for it.
func (r *reader) readCount() (uint32, error) {
	n, err := r.readU32()
	if err != nil {
		return 0, err
	}
	if uint64(n) > uint64(len(r.data)-r.pos) {
		return 0, r.wrapError(fmt.Errorf("%w: %d", ErrCountTooLarge, n))
	}
	return n, nil
}

// readName reads a UTF-8 encoded, length-prefixed name.
func (r *reader) readName() (string, error) {
	length, err := r.readU32()
	if err != nil {
		return "", err
	}
	data, err := r.readBytes(int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", r.wrapError(errors.New("invalid UTF-8 in name"))
	}
	return string(data), nil
}

// readU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *reader) readU32LE() (uint32, error) {
	buf, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (r *reader) wrapError(err error) error {
	return fmt.Errorf("at offset %d: %w", r.base+r.pos, err)
}
