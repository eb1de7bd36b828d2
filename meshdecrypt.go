package meshtastic

import (
	"fmt"
	"io"

	"github.com/akohlsmith/meshtastic-compression-test/aesctr"
)

// DefaultKey is the 16-byte PSK every device powers up on for the public
// default channel (AES-128). It is not a secret in any meaningful sense —
// it is published so any Meshtastic node can join the default channel —
// but it is the key callers use unless they have a channel-specific PSK.
var DefaultKey = [16]byte{
	0xd4, 0xf1, 0xbb, 0x3a, 0x20, 0x29, 0x07, 0x59, 0xf0, 0xbc, 0xff, 0xab, 0xcf, 0x4e, 0x69, 0x01,
}

// maxPayloadLen bounds the scratch buffer Decrypt pads into, matching the
// original host's static crypt_buffer[256].
const maxPayloadLen = 256

// counterBytes is the number of trailing bytes of the CTR block that
// increment per block; the nonce's packet-id/source-id fields occupy the
// rest (ctrStart = 16 - counterBytes = 12).
const counterBytes = 4

// Decrypt transforms buf in place: it builds the 16-byte nonce from src and
// id, installs key (or DefaultKey's layout if the caller passes it) under
// AES-128-CTR with a 4-byte counter region, pads buf to the next 16-byte
// boundary with zeros in a scratch buffer, runs the CTR transform over the
// padded region, and copies back only len(buf) bytes — the padding is
// never written back.
//
// CTR mode is self-inverse, so Decrypt also serves as the encrypt path for
// round-trip tests.
//
// If trace is non-nil, Decrypt writes the nonce, key, (pre-transform)
// padded ciphertext, and (post-transform) padded plaintext as four hex
// lines to it, mirroring the original host's `debug` dump.
func Decrypt(src, id uint32, buf []byte, key [16]byte, trace io.Writer) error {
	if len(buf) > maxPayloadLen {
		return ErrPayloadTooLarge
	}

	nonce := aesctr.BuildNonce(src, id)

	cipher, err := aesctr.NewCipher(key[:])
	if err != nil {
		return err
	}
	cipher.SetCounterStart(counterBytes)
	if err := cipher.SetIV(nonce[:]); err != nil {
		return err
	}

	padded := (len(buf) + 15) &^ 15
	var scratch [maxPayloadLen]byte
	copy(scratch[:len(buf)], buf)
	// scratch[len(buf):padded] is already zero from the array's zero value.

	if trace != nil {
		fmt.Fprintf(trace, "nonce % x\n", nonce)
		fmt.Fprintf(trace, "key   % x\n", key)
		fmt.Fprintf(trace, "enc   % x\n", scratch[:padded])
	}

	cipher.Crypt(scratch[:padded], scratch[:padded])

	if trace != nil {
		fmt.Fprintf(trace, "dec   % x\n", scratch[:padded])
	}

	copy(buf, scratch[:len(buf)])
	return nil
}
