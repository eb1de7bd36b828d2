// Package meshpb is the opaque byte-producing collaborator the core treats
// as a black box: it pulls just enough fields out of the Meshtastic
// protobuf wire format (ServiceEnvelope -> MeshPacket -> Data) to locate
// the encrypted payload boundary and, once decrypted, the decoded port
// number and its payload bytes. It does not generate full .proto bindings;
// it walks the wire format directly with protowire, which is all a field
// scanner this thin needs.
package meshpb

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed is returned when the wire bytes don't parse as a valid
// sequence of protobuf fields.
var ErrMalformed = errors.New("meshpb: malformed protobuf bytes")

// Field numbers below follow Meshtastic's mesh.proto / mqtt.proto layout.
const (
	envelopePacketField = 1

	packetFromField      = 1
	packetToField        = 2
	packetIDField        = 6
	packetEncryptedField = 5
	packetDecodedField   = 4

	dataPortnumField = 1
	dataPayloadField = 2
)

// Packet holds the fields of a MeshPacket this collaborator cares about.
// Exactly one of Encrypted or Decoded is populated, matching the source
// protobuf's payload_variant oneof.
type Packet struct {
	From      uint32
	To        uint32
	ID        uint32
	Encrypted []byte // present before MeshDecrypt has run
	Decoded   []byte // present once the payload is Data-encoded plaintext
}

// ParseEnvelope extracts the embedded MeshPacket from a ServiceEnvelope
// received off the broker topic.
func ParseEnvelope(b []byte) (Packet, error) {
	var packetBytes []byte

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Packet{}, ErrMalformed
		}
		b = b[n:]

		if num == envelopePacketField && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Packet{}, ErrMalformed
			}
			packetBytes = v
			b = b[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return Packet{}, ErrMalformed
		}
		b = b[n:]
	}

	return parsePacket(packetBytes)
}

func parsePacket(b []byte) (Packet, error) {
	var p Packet

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Packet{}, ErrMalformed
		}
		b = b[n:]

		if num == packetFromField && typ == protowire.Fixed32Type {
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return Packet{}, ErrMalformed
			}
			p.From = v
			b = b[n:]
			continue
		}

		if num == packetToField && typ == protowire.Fixed32Type {
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return Packet{}, ErrMalformed
			}
			p.To = v
			b = b[n:]
			continue
		}

		if num == packetIDField && typ == protowire.Fixed32Type {
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return Packet{}, ErrMalformed
			}
			p.ID = v
			b = b[n:]
			continue
		}

		if num == packetEncryptedField && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Packet{}, ErrMalformed
			}
			p.Encrypted = append([]byte{}, v...)
			b = b[n:]
			continue
		}

		if num == packetDecodedField && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Packet{}, ErrMalformed
			}
			p.Decoded = append([]byte{}, v...)
			b = b[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return Packet{}, ErrMalformed
		}
		b = b[n:]
	}

	return p, nil
}

// Data holds the decoded payload_variant of a MeshPacket once its
// encrypted bytes have been transformed by MeshDecrypt: a port number
// (which app produced the payload) and the app-specific payload bytes.
type Data struct {
	Portnum uint32
	Payload []byte
}

// ParseData decodes the plaintext produced by decrypting Packet.Encrypted.
func ParseData(b []byte) (Data, error) {
	var d Data

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Data{}, ErrMalformed
		}
		b = b[n:]

		if num == dataPortnumField && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Data{}, ErrMalformed
			}
			d.Portnum = uint32(v)
			b = b[n:]
			continue
		}

		if num == dataPayloadField && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Data{}, ErrMalformed
			}
			d.Payload = append([]byte{}, v...)
			b = b[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return Data{}, ErrMalformed
		}
		b = b[n:]
	}

	return d, nil
}
