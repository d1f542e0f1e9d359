package bgl

import (
	"errors"
	"math"
	"testing"
)

func TestStreamReads(t *testing.T) {
	// 0xfe byte, 0x1234 ushort, 0xdeadbeef uint, 1.5 float.
	data := []byte{
		0xfe,
		0x34, 0x12,
		0xef, 0xbe, 0xad, 0xde,
		0x00, 0x00, 0xc0, 0x3f,
	}
	s := NewStream(data)

	b, err := s.ReadUByte()
	if err != nil || b != 0xfe {
		t.Fatalf("ReadUByte = %#x, %v", b, err)
	}
	us, err := s.ReadUShort()
	if err != nil || us != 0x1234 {
		t.Fatalf("ReadUShort = %#x, %v", us, err)
	}
	ui, err := s.ReadUInt()
	if err != nil || ui != 0xdeadbeef {
		t.Fatalf("ReadUInt = %#x, %v", ui, err)
	}
	f, err := s.ReadFloat()
	if err != nil || f != 1.5 {
		t.Fatalf("ReadFloat = %v, %v", f, err)
	}
	if s.Tell() != len(data) {
		t.Errorf("Tell = %d, want %d", s.Tell(), len(data))
	}
}

func TestStreamSignedReads(t *testing.T) {
	s := NewStream([]byte{0xff, 0xff, 0xff, 0xff, 0xff})
	b, err := s.ReadByte()
	if err != nil || b != -1 {
		t.Fatalf("ReadByte = %d, %v", b, err)
	}
	i, err := s.ReadInt()
	if err != nil || i != -1 {
		t.Fatalf("ReadInt = %d, %v", i, err)
	}
}

func TestStreamOutOfBounds(t *testing.T) {
	s := NewStream([]byte{0x01, 0x02})

	if _, err := s.ReadUInt(); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("ReadUInt past end = %v, want ErrOutOfBounds", err)
	}
	// Failed read must not advance the cursor.
	if s.Tell() != 0 {
		t.Errorf("Tell after failed read = %d, want 0", s.Tell())
	}

	if err := s.Skip(3); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Skip past end = %v, want ErrOutOfBounds", err)
	}
	if err := s.Skip(2); err != nil {
		t.Errorf("Skip to exact end = %v, want nil", err)
	}
	if err := s.Seek(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Seek(-1) = %v, want ErrOutOfBounds", err)
	}
}

func TestStreamFloatBits(t *testing.T) {
	bits := math.Float32bits(118.5)
	s := NewStream([]byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)})
	f, err := s.ReadFloat()
	if err != nil || f != 118.5 {
		t.Fatalf("ReadFloat = %v, %v, want 118.5", f, err)
	}
}
