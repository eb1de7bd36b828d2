// Package aesctr implements AES-128 with an on-the-fly key schedule and a
// counter-mode (CTR) keystream transform, ported bit-exactly from the
// meshtastic-compression-test host's aes128_* routines in main.c. Only CTR
// mode is offered; this is not a general cryptographic library.
//
// The key schedule is expanded incrementally: rather than materializing
// all 176 expanded-key bytes up front, each block encryption holds a
// 16-byte round key and advances it in place at the start of every round.
// The counter increment is constant-time by construction — it always walks
// the full counter region regardless of how early a carry stops
// propagating, which matters for the security claim CTR mode depends on
// and must not be "optimized" away.
package aesctr

import "errors"

// ErrShortKey is returned by NewCipher when key is not exactly 16 bytes.
var ErrShortKey = errors.New("aesctr: key must be 16 bytes")

// ErrShortNonce is returned by SetIV when iv is not exactly 16 bytes.
var ErrShortNonce = errors.New("aesctr: nonce must be 16 bytes")

// sbox is the standard Rijndael substitution box.
var sbox = [256]byte{
	0x63, 0x7c, 0x77, 0x7b, 0xf2, 0x6b, 0x6f, 0xc5, 0x30, 0x01, 0x67, 0x2b, 0xfe, 0xd7, 0xab, 0x76,
	0xca, 0x82, 0xc9, 0x7d, 0xfa, 0x59, 0x47, 0xf0, 0xad, 0xd4, 0xa2, 0xaf, 0x9c, 0xa4, 0x72, 0xc0,
	0xb7, 0xfd, 0x93, 0x26, 0x36, 0x3f, 0xf7, 0xcc, 0x34, 0xa5, 0xe5, 0xf1, 0x71, 0xd8, 0x31, 0x15,
	0x04, 0xc7, 0x23, 0xc3, 0x18, 0x96, 0x05, 0x9a, 0x07, 0x12, 0x80, 0xe2, 0xeb, 0x27, 0xb2, 0x75,
	0x09, 0x83, 0x2c, 0x1a, 0x1b, 0x6e, 0x5a, 0xa0, 0x52, 0x3b, 0xd6, 0xb3, 0x29, 0xe3, 0x2f, 0x84,
	0x53, 0xd1, 0x00, 0xed, 0x20, 0xfc, 0xb1, 0x5b, 0x6a, 0xcb, 0xbe, 0x39, 0x4a, 0x4c, 0x58, 0xcf,
	0xd0, 0xef, 0xaa, 0xfb, 0x43, 0x4d, 0x33, 0x85, 0x45, 0xf9, 0x02, 0x7f, 0x50, 0x3c, 0x9f, 0xa8,
	0x51, 0xa3, 0x40, 0x8f, 0x92, 0x9d, 0x38, 0xf5, 0xbc, 0xb6, 0xda, 0x21, 0x10, 0xff, 0xf3, 0xd2,
	0xcd, 0x0c, 0x13, 0xec, 0x5f, 0x97, 0x44, 0x17, 0xc4, 0xa7, 0x7e, 0x3d, 0x64, 0x5d, 0x19, 0x73,
	0x60, 0x81, 0x4f, 0xdc, 0x22, 0x2a, 0x90, 0x88, 0x46, 0xee, 0xb8, 0x14, 0xde, 0x5e, 0x0b, 0xdb,
	0xe0, 0x32, 0x3a, 0x0a, 0x49, 0x06, 0x24, 0x5c, 0xc2, 0xd3, 0xac, 0x62, 0x91, 0x95, 0xe4, 0x79,
	0xe7, 0xc8, 0x37, 0x6d, 0x8d, 0xd5, 0x4e, 0xa9, 0x6c, 0x56, 0xf4, 0xea, 0x65, 0x7a, 0xae, 0x08,
	0xba, 0x78, 0x25, 0x2e, 0x1c, 0xa6, 0xb4, 0xc6, 0xe8, 0xdd, 0x74, 0x1f, 0x4b, 0xbd, 0x8b, 0x8a,
	0x70, 0x3e, 0xb5, 0x66, 0x48, 0x03, 0xf6, 0x0e, 0x61, 0x35, 0x57, 0xb9, 0x86, 0xc1, 0x1d, 0x9e,
	0xe1, 0xf8, 0x98, 0x11, 0x69, 0xd9, 0x8e, 0x94, 0x9b, 0x1e, 0x87, 0xe9, 0xce, 0x55, 0x28, 0xdf,
	0x8c, 0xa1, 0x89, 0x0d, 0xbf, 0xe6, 0x42, 0x68, 0x41, 0x99, 0x2d, 0x0f, 0xb0, 0x54, 0xbb, 0x16,
}

// rcon holds the round constants for i = 0..10, 2^i in the Rijndael finite field.
var rcon = [11]byte{0x00, 0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1B, 0x36}

// gmul2 doubles x in GF(2^8) using the 0x1B reduction polynomial.
func gmul2(x byte) byte {
	t := uint16(x) << 1
	return byte(t) ^ byte(0x1B*(t>>8))
}

// keyScheduleCore applies the KCORE transform: rotate the input word left
// by one byte, substitute each byte through the S-box, then XOR the
// leading byte with rcon[round].
func keyScheduleCore(in [4]byte, round int) [4]byte {
	return [4]byte{
		sbox[in[1]] ^ rcon[round],
		sbox[in[2]],
		sbox[in[3]],
		sbox[in[0]],
	}
}

// subBytesAndShiftRows fuses SubBytes with ShiftRows: output column c row r
// equals sbox[input[c+r, (r+c) mod 4]] addressed in column-major order.
func subBytesAndShiftRows(out, in *[16]byte) {
	at := func(col, row int) byte { return in[col*4+row] }
	out[0*4+0] = sbox[at(0, 0)]
	out[0*4+1] = sbox[at(1, 1)]
	out[0*4+2] = sbox[at(2, 2)]
	out[0*4+3] = sbox[at(3, 3)]
	out[1*4+0] = sbox[at(1, 0)]
	out[1*4+1] = sbox[at(2, 1)]
	out[1*4+2] = sbox[at(3, 2)]
	out[1*4+3] = sbox[at(0, 3)]
	out[2*4+0] = sbox[at(2, 0)]
	out[2*4+1] = sbox[at(3, 1)]
	out[2*4+2] = sbox[at(0, 2)]
	out[2*4+3] = sbox[at(1, 3)]
	out[3*4+0] = sbox[at(3, 0)]
	out[3*4+1] = sbox[at(0, 1)]
	out[3*4+2] = sbox[at(1, 2)]
	out[3*4+3] = sbox[at(2, 3)]
}

// mixColumn applies the MixColumns transform to one 4-byte column.
func mixColumn(out, in []byte) {
	a, b, c, d := in[0], in[1], in[2], in[3]
	a2, b2, c2, d2 := gmul2(a), gmul2(b), gmul2(c), gmul2(d)

	out[0] = a2 ^ b2 ^ b ^ c ^ d
	out[1] = a ^ b2 ^ c2 ^ c ^ d
	out[2] = a ^ b ^ c2 ^ d2 ^ d
	out[3] = a2 ^ a ^ b ^ c ^ d2
}

// encryptBlock runs the 10-round AES-128 cipher over ctr under key,
// writing the ciphertext block into out. The key
// schedule is advanced in place, one round's worth at a time, rather than
// precomputed in full.
func encryptBlock(key, ctr *[16]byte, out *[16]byte) {
	var schedule [16]byte
	copy(schedule[:], key[:])

	var state1, state2 [16]byte
	for i := range state1 {
		state1[i] = ctr[i] ^ schedule[i]
	}

	advance := func(round int) {
		var word3 [4]byte
		copy(word3[:], schedule[12:16])
		core := keyScheduleCore(word3, round)
		for i := 0; i < 4; i++ {
			schedule[i] ^= core[i]
		}
		for w := 1; w <= 3; w++ {
			for i := 0; i < 4; i++ {
				schedule[w*4+i] ^= schedule[(w-1)*4+i]
			}
		}
	}

	for round := 1; round <= 9; round++ {
		advance(round)

		subBytesAndShiftRows(&state2, &state1)
		mixColumn(state1[0:4], state2[0:4])
		mixColumn(state1[4:8], state2[4:8])
		mixColumn(state1[8:12], state2[8:12])
		mixColumn(state1[12:16], state2[12:16])
		for i := range state1 {
			state1[i] ^= schedule[i]
		}
	}

	advance(10)
	subBytesAndShiftRows(&state2, &state1)
	for i := range out {
		out[i] = state2[i] ^ schedule[i]
	}
}

// EncryptBlock runs single-block AES-128 ECB encryption of block under key.
// It exists to make the cipher's core round function independently
// testable against NIST known-answer vectors; the CTR transform (Cipher)
// is the only mode this package exposes for actual use.
func EncryptBlock(key, block [16]byte) [16]byte {
	var out [16]byte
	encryptBlock(&key, &block, &out)
	return out
}

// Cipher is an AES-128 counter-mode stream transform. The zero value is not
// usable; construct one with NewCipher.
type Cipher struct {
	key      [16]byte
	ctr      [16]byte
	state    [16]byte // current keystream block
	idx      int      // [0,16], index into state not yet consumed
	ctrStart int       // [0,16], inclusive boundary: bytes below this are constant nonce
}

// NewCipher constructs a Cipher from a 16-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != 16 {
		return nil, ErrShortKey
	}

	c := &Cipher{idx: 16, ctrStart: 0}
	copy(c.key[:], key)
	return c, nil
}

// SetCounterStart fixes the boundary byte in the 16-byte block below which
// bytes are the constant nonce and at/above which bytes are the
// incrementing counter. n is the number of trailing counter bytes (e.g.
// n=4 sets ctrStart=12).
func (c *Cipher) SetCounterStart(n int) {
	c.ctrStart = 16 - n
}

// SetIV installs the 16-byte initial counter-block value (the nonce,
// including the zeroed counter field) and forces the next Crypt call to
// generate a fresh keystream block.
func (c *Cipher) SetIV(iv []byte) error {
	if len(iv) != 16 {
		return ErrShortNonce
	}

	copy(c.ctr[:], iv)
	c.idx = 16
	return nil
}

// Crypt XORs src into dst, src and dst may overlap identically (in-place).
// CTR mode is self-inverse: the same call encrypts or decrypts.
func (c *Cipher) Crypt(dst, src []byte) {
	for len(src) > 0 {
		if c.idx >= 16 {
			encryptBlock(&c.key, &c.ctr, &c.state)
			c.idx = 0
			c.incrementCounter()
		}

		templen := 16 - c.idx
		if templen > len(src) {
			templen = len(src)
		}

		for i := 0; i < templen; i++ {
			dst[i] = src[i] ^ c.state[c.idx]
			c.idx++
		}

		dst = dst[templen:]
		src = src[templen:]
	}
}

// incrementCounter increments ctr[ctrStart:16] as a big-endian integer,
// taking care not to reveal any timing information about the starting
// value: it walks the entire counter region from byte 15 down to
// ctrStart, inclusive, regardless of where the carry propagation would
// otherwise stop.
func (c *Cipher) incrementCounter() {
	temp := uint16(1)
	i := 16
	for i > c.ctrStart {
		i--
		temp += uint16(c.ctr[i])
		c.ctr[i] = byte(temp)
		temp >>= 8
	}
}
