package bytestream

import "testing"

func TestAttachNilAllocates(t *testing.T) {
	var s Stream
	s.Attach(nil)

	if got := s.Len(); got != defaultCapacity {
		t.Fatalf("Len() = %d, want %d", got, defaultCapacity)
	}
	if got := s.Pos(); got != 0 {
		t.Fatalf("Pos() = %d, want 0", got)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	var s Stream
	s.Attach(make([]byte, 4))

	for _, v := range []uint8{0x01, 0x02, 0x03, 0x04} {
		if err := s.PushU8(v); err != nil {
			t.Fatalf("PushU8(%#x): %v", v, err)
		}
	}

	buf, used := s.Detach()
	if used != 4 {
		t.Fatalf("used = %d, want 4", used)
	}

	var r Stream
	r.Attach(buf)
	for i, want := range []uint8{0x01, 0x02, 0x03, 0x04} {
		if got := r.PopU8(); got != want {
			t.Fatalf("PopU8() #%d = %#x, want %#x", i, got, want)
		}
	}
}

func TestPopPastEndReturnsZero(t *testing.T) {
	var s Stream
	s.Attach([]byte{0xAA})
	s.PopU8()

	for i := 0; i < 8; i++ {
		if got := s.PopU8(); got != 0 {
			t.Fatalf("PopU8() past end #%d = %#x, want 0", i, got)
		}
	}
}

func TestPushPastCapacityFails(t *testing.T) {
	var s Stream
	s.Attach(make([]byte, 2))

	if err := s.PushU8(1); err != nil {
		t.Fatalf("PushU8(1): %v", err)
	}
	if err := s.PushU8(2); err != nil {
		t.Fatalf("PushU8(2): %v", err)
	}
	if err := s.PushU8(3); err != ErrCapacityExhausted {
		t.Fatalf("PushU8(3) err = %v, want ErrCapacityExhausted", err)
	}
}

func TestCarryU8SingleByte(t *testing.T) {
	var s Stream
	s.Attach([]byte{0x00, 0x00, 0x00})
	s.PushU8(0x01)
	s.CarryU8()

	buf, _ := s.Detach()
	if buf[0] != 0x02 {
		t.Fatalf("buf[0] = %#x, want 0x02", buf[0])
	}
}

func TestCarryU8PropagatesThroughFF(t *testing.T) {
	// Emulate a stream that has already written 0x01 0xFF 0xFF, then carry.
	// Expect 0x02 0x00 0x00, matching big-endian increment-with-propagation.
	var s Stream
	s.Attach(make([]byte, 4))
	for _, v := range []uint8{0x01, 0xFF, 0xFF} {
		if err := s.PushU8(v); err != nil {
			t.Fatalf("PushU8(%#x): %v", v, err)
		}
	}

	s.CarryU8()

	buf, used := s.Detach()
	if used != 3 {
		t.Fatalf("used = %d, want 3", used)
	}
	want := []byte{0x02, 0x00, 0x00}
	for i, w := range want {
		if buf[i] != w {
			t.Fatalf("buf[%d] = %#x, want %#x", i, buf[i], w)
		}
	}
}

func TestDetachResetsState(t *testing.T) {
	var s Stream
	s.Attach(make([]byte, 4))
	s.PushU8(1)
	s.Detach()

	if got := s.Len(); got != 0 {
		t.Fatalf("Len() after Detach = %d, want 0", got)
	}
	if got := s.Pos(); got != 0 {
		t.Fatalf("Pos() after Detach = %d, want 0", got)
	}
}

func TestAttachReplacesOwnedBuffer(t *testing.T) {
	var s Stream
	s.Attach(nil) // internally owned 256-byte buffer
	s.PushU8(0xAB)

	caller := make([]byte, 8)
	s.Attach(caller)

	if got := s.Len(); got != 8 {
		t.Fatalf("Len() = %d, want 8", got)
	}
	if got := s.Pos(); got != 0 {
		t.Fatalf("Pos() = %d, want 0 after reattach", got)
	}
}
