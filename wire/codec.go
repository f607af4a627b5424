// Package wire implements the Paxos message codec: a sequence of signed
// 32-bit big-endian integers, with no framing beyond UDP's own datagram
// boundaries.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Phase identifies the position of a message in the Paxos protocol.
// Phase tags 1 and 2 are overloaded: direction (proposer/acceptor vs.
// acceptor/learner) disambiguates 1A from 1B and 2A from 2B.
type Phase int32

const (
	PhaseSubmit  Phase = 0 // client -> proposers: [value]
	Phase1A      Phase = 1 // proposer -> acceptors: [c-rnd]
	Phase1B      Phase = 1 // acceptor -> proposers: [rnd, v-rnd, v-val]
	Phase2A      Phase = 2 // proposer -> acceptors: [c-rnd, c-val]
	Phase2B      Phase = 2 // acceptor -> learners: [v-rnd, v-val]
	PhaseRestart Phase = 3 // proposer(timer) -> proposers: [new-round]
)

// NoneInstance is the placeholder instance number used by a client
// submit message; the proposer that receives it assigns the real
// instance number.
const NoneInstance int32 = -1

// Sentinel is the "no value yet" marker used for v-val and k-val.
const Sentinel int32 = -1

// Message is the [instance, phase, payload...] header plus payload
// bundled together so role code never slices raw []int32 by hand.
type Message struct {
	Instance int32
	Phase    Phase
	Payload  []int32
}

// Encode renders a sequence of signed 32-bit integers as the
// concatenation of each integer's big-endian four-byte representation.
func Encode(values []int32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint32(buf[4*i:], uint32(v))
	}
	return buf
}

// Decode parses a byte buffer into a sequence of signed 32-bit
// big-endian integers. A buffer whose length is not a multiple of four
// indicates a corrupt or truncated datagram and is an error, not a
// value to silently truncate.
func Decode(buf []byte) ([]int32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("wire: decode: buffer length %d is not a multiple of 4", len(buf))
	}
	out := make([]int32, len(buf)/4)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(buf[4*i:]))
	}
	return out, nil
}

// EncodeMessage encodes a Message as [instance, phase, payload...].
func EncodeMessage(m Message) []byte {
	values := make([]int32, 2+len(m.Payload))
	values[0] = m.Instance
	values[1] = int32(m.Phase)
	copy(values[2:], m.Payload)
	return Encode(values)
}

// DecodeMessage decodes a datagram into a Message. It requires at least
// the two header fields to be present.
func DecodeMessage(buf []byte) (Message, error) {
	values, err := Decode(buf)
	if err != nil {
		return Message{}, err
	}
	if len(values) < 2 {
		return Message{}, fmt.Errorf("wire: decode: message has %d fields, need at least 2", len(values))
	}
	return Message{
		Instance: values[0],
		Phase:    Phase(values[1]),
		Payload:  values[2:],
	}, nil
}
