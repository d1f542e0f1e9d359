// Package bgl decodes the bit-packed binary procedure records found in
// flight-simulator scenery files: a self-describing stream of
// length-prefixed records that nest sub-records using the same tag+size
// prefix convention. All integers are little-endian, floats are IEEE-754
// single precision.
package bgl

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrOutOfBounds is returned when a read runs past the end of the
// buffer. It aborts the current record decode only; sibling records
// already produced stay intact.
var ErrOutOfBounds = errors.New("read past end of record stream")

// Stream is a sequential, forward-only cursor over a byte buffer.
// Decoders share one stream and rely on Record seek bookkeeping to land
// on record boundaries.
type Stream struct {
	data []byte
	pos  int
}

// NewStream creates a cursor positioned at the start of data.
func NewStream(data []byte) *Stream {
	return &Stream{data: data}
}

// Tell returns the current byte offset.
func (s *Stream) Tell() int {
	return s.pos
}

// Len returns the total buffer length.
func (s *Stream) Len() int {
	return len(s.data)
}

// Seek positions the cursor at an absolute offset. Seeking to the end of
// the buffer is allowed; seeking past it is not.
func (s *Stream) Seek(offset int) error {
	if offset < 0 || offset > len(s.data) {
		return ErrOutOfBounds
	}
	s.pos = offset
	return nil
}

// Skip advances the cursor by n bytes.
func (s *Stream) Skip(n int) error {
	return s.Seek(s.pos + n)
}

// ReadByte reads a signed 8-bit integer.
func (s *Stream) ReadByte() (int8, error) {
	b, err := s.ReadUByte()
	return int8(b), err
}

// ReadUByte reads an unsigned 8-bit integer.
func (s *Stream) ReadUByte() (uint8, error) {
	if s.pos+1 > len(s.data) {
		return 0, ErrOutOfBounds
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

// ReadUShort reads an unsigned little-endian 16-bit integer.
func (s *Stream) ReadUShort() (uint16, error) {
	if s.pos+2 > len(s.data) {
		return 0, ErrOutOfBounds
	}
	v := binary.LittleEndian.Uint16(s.data[s.pos:])
	s.pos += 2
	return v, nil
}

// ReadUInt reads an unsigned little-endian 32-bit integer.
func (s *Stream) ReadUInt() (uint32, error) {
	if s.pos+4 > len(s.data) {
		return 0, ErrOutOfBounds
	}
	v := binary.LittleEndian.Uint32(s.data[s.pos:])
	s.pos += 4
	return v, nil
}

// ReadInt reads a signed little-endian 32-bit integer.
func (s *Stream) ReadInt() (int32, error) {
	v, err := s.ReadUInt()
	return int32(v), err
}

// ReadFloat reads a little-endian IEEE-754 single-precision float.
func (s *Stream) ReadFloat() (float32, error) {
	v, err := s.ReadUInt()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}
