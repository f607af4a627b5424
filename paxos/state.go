// Package paxos implements the per-role state machines of multi-decree
// Paxos: proposer (with its restart timer), acceptor, and learner. Each
// role owns a map from Paxos instance number to a small tagged struct,
// with fields named for the classic Paxos variables they hold --
// "c-rnd"/"v-rnd"/"k"/... -- rather than a string-keyed map.
package paxos

import "paxos/wire"

// proposalState is a proposer's per-instance bookkeeping.
type proposalState struct {
	cRnd int32 // current round
	cVal int32 // candidate value for this round
	q    int   // promises received for cRnd
	k    int32 // highest v-rnd seen in a promise, -1 if none
	kVal int32 // value associated with k
}

func newProposalState(value int32) *proposalState {
	return &proposalState{
		cRnd: 0,
		cVal: value,
		q:    0,
		k:    wire.Sentinel,
		kVal: wire.Sentinel,
	}
}

// chosenValue is the value a proposer sends in a 2A: the value
// associated with the highest v-rnd reported by any promise, or its own
// candidate if no acceptor had previously accepted anything.
func (s *proposalState) chosenValue() int32 {
	if s.k > wire.Sentinel {
		return s.kVal
	}
	return s.cVal
}

// acceptorState is an acceptor's per-instance bookkeeping.
type acceptorState struct {
	rnd   int32 // highest round promised
	vRnd  int32 // round in which a value was accepted, -1 if none
	vVal  int32 // accepted value
	armed bool  // true once a 1A has initialised this instance
}

func newAcceptorState() *acceptorState {
	return &acceptorState{
		rnd:  wire.Sentinel,
		vRnd: wire.Sentinel,
		vVal: wire.Sentinel,
	}
}

// learnerEntry is a learner's per-instance bookkeeping before the
// instance reaches quorum and is emitted.
type learnerEntry struct {
	vRnd   int32
	vVal   int32
	quorum int
}
