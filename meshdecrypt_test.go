package meshtastic

import (
	"bytes"
	"testing"
)

func TestDecryptSelfInverse(t *testing.T) {
	msg := append(bytes.Repeat([]byte{0x01}, 40), []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}...)
	buf := append([]byte{}, msg...)

	if err := Decrypt(0x12345678, 0xAABBCCDD, buf, DefaultKey, nil); err != nil {
		t.Fatalf("Decrypt (encrypt pass): %v", err)
	}
	if bytes.Equal(buf, msg) {
		t.Fatalf("buffer unchanged after first pass")
	}

	if err := Decrypt(0x12345678, 0xAABBCCDD, buf, DefaultKey, nil); err != nil {
		t.Fatalf("Decrypt (decrypt pass): %v", err)
	}
	if !bytes.Equal(buf, msg) {
		t.Fatalf("round trip mismatch: got %v, want %v", buf, msg)
	}
}

func TestDecryptPayloadTooLarge(t *testing.T) {
	buf := make([]byte, maxPayloadLen+1)
	if err := Decrypt(1, 1, buf, DefaultKey, nil); err != ErrPayloadTooLarge {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestDecryptDoesNotTouchBytesBeyondLength(t *testing.T) {
	// A payload not a multiple of 16 bytes must come back exactly
	// len(buf) bytes; padding must never leak into the result.
	buf := bytes.Repeat([]byte{0xAB}, 5)
	orig := append([]byte{}, buf...)

	if err := Decrypt(7, 9, buf, DefaultKey, nil); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if len(buf) != 5 {
		t.Fatalf("len(buf) = %d, want 5", len(buf))
	}

	if err := Decrypt(7, 9, buf, DefaultKey, nil); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(buf, orig) {
		t.Fatalf("round trip mismatch: got %v, want %v", buf, orig)
	}
}
