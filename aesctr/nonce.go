package aesctr

// BuildNonce deterministically constructs the 16-byte CTR nonce for a mesh
// packet from its packet id and source node id, per gen_nonce in main.c.
//
// Layout (all little-endian within their field):
//
//	bytes [0,4)   packet id
//	bytes [4,8)   zero (the packet id is copied into the low 4 bytes of an
//	              8-byte slot; the upper 4 bytes are left zero by protocol
//	              convention)
//	bytes [8,12)  source node id
//	bytes [12,16) zero (the block counter; filled in by the CTR layer)
func BuildNonce(src, packetID uint32) [16]byte {
	var nonce [16]byte
	nonce[0] = byte(packetID)
	nonce[1] = byte(packetID >> 8)
	nonce[2] = byte(packetID >> 16)
	nonce[3] = byte(packetID >> 24)

	nonce[8] = byte(src)
	nonce[9] = byte(src >> 8)
	nonce[10] = byte(src >> 16)
	nonce[11] = byte(src >> 24)

	return nonce
}
