package bgl

import "fmt"

// Record is the bookkeeping for one length-prefixed record: its tag,
// declared total size and start offset. Decoders read past each other's
// boundaries all the time; SeekToEnd is what keeps the stream in sync
// no matter how much (or little) of a record a decoder understood.
type Record struct {
	Tag   RecordTag
	Size  int
	Start int
}

// ReadRecord reads a record prefix (uint16 tag, uint32 total size) at
// the current cursor position. The start offset is the position of the
// prefix itself; Size counts the prefix.
func ReadRecord(s *Stream) (Record, error) {
	start := s.Tell()
	tag, err := s.ReadUShort()
	if err != nil {
		return Record{}, err
	}
	size, err := s.ReadUInt()
	if err != nil {
		return Record{}, err
	}
	return Record{Tag: RecordTag(tag), Size: int(size), Start: start}, nil
}

// End returns the offset one past the record's declared last byte.
func (r Record) End() int {
	return r.Start + r.Size
}

// SeekToStart positions the cursor at the record prefix so the record
// can be re-read by a different decoder.
func (r Record) SeekToStart(s *Stream) error {
	return s.Seek(r.Start)
}

// SeekToEnd positions the cursor exactly at the record's declared end,
// regardless of how much the decoder consumed. A record whose declared
// end lies past the buffer is clamped-rejected by the stream and
// surfaces as ErrOutOfBounds.
func (r Record) SeekToEnd(s *Stream) error {
	return s.Seek(r.End())
}

// CheckBound verifies the record's declared end against the enclosing
// record. A sub-record reporting an end beyond its parent's bound is a
// structural error in the source data.
func (r Record) CheckBound(parent Record) error {
	if r.End() > parent.End() {
		return fmt.Errorf("sub-record 0x%04x end %d exceeds parent 0x%04x end %d",
			uint16(r.Tag), r.End(), uint16(parent.Tag), parent.End())
	}
	return nil
}
