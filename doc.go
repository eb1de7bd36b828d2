// Package meshtastic composes the mesh payload decryption pipeline used to
// prepare LoRa-mesh telemetry packets for compressibility analysis.
//
// A Meshtastic packet carries an AES-128-CTR encrypted payload. The nonce
// is not transmitted; it is rebuilt deterministically from the packet's
// source node id and packet id (see BuildNonce in the aesctr package). This
// package's Decrypt ties nonce construction, key installation, and the
// zero-padded in-place CTR transform together into the single call a
// broker-receive callback needs.
//
// # Scope
//
// Everything downstream of decryption — protobuf field parsing, the
// arithmetic coder's compressibility check, human-readable dumping — lives
// in sibling packages (meshpb, arithcoder, cdf) and is deliberately not
// imported here. Decrypt only ever touches the encrypted-payload boundary.
package meshtastic
