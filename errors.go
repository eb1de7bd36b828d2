// errors.go defines public error types for the meshtastic package.

package meshtastic

import "errors"

// Public error types for the mesh decryption boundary.
var (
	// ErrPayloadTooLarge indicates a payload larger than the fixed scratch
	// buffer used to pad to a 16-byte boundary before CTR transform.
	ErrPayloadTooLarge = errors.New("meshtastic: payload exceeds maximum decrypt buffer size")
)
