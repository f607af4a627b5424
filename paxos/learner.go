package paxos

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"

	"paxos/mcast"
	"paxos/paxosconf"
	"paxos/wire"
)

// Learner drives the learner role: collecting 2B quorums per instance
// and emitting the gap-free, duplicate-free sequence of learned values.
// Learned values are written to out, flushed after every handled
// message -- learner stdout carries only learned values, never
// diagnostics.
type Learner struct {
	id       int
	quorum   int
	receiver *mcast.Receiver

	log *log.Logger
	out *bufio.Writer

	itl     int32
	entries map[int32]*learnerEntry
}

// NewLearner constructs a Learner for the given config and quorum size.
func NewLearner(id int, cfg *paxosconf.Config, quorum int, out io.Writer, logger *log.Logger) (*Learner, error) {
	receiver, err := mcast.NewReceiver(cfg.Learners)
	if err != nil {
		return nil, fmt.Errorf("learner %d: %w", id, err)
	}

	return &Learner{
		id:       id,
		quorum:   quorum,
		receiver: receiver,
		log:      logger,
		out:      bufio.NewWriter(out),
		entries:  make(map[int32]*learnerEntry),
	}, nil
}

// Run blocks receiving and handling 2B messages until ctx is cancelled
// or a transport error occurs.
func (l *Learner) Run(ctx context.Context) error {
	msgs := make(chan wire.Message)
	recvErr := make(chan error, 1)
	go func() {
		for {
			msg, _, err := l.receiver.Recv()
			if err != nil {
				recvErr <- err
				return
			}
			msgs <- msg
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-recvErr:
			return fmt.Errorf("learner %d: receive: %w", l.id, err)
		case msg := <-msgs:
			if msg.Phase != wire.Phase2B {
				l.log.Printf("learner %d: dropping message with unrecognised phase %d for instance %d", l.id, msg.Phase, msg.Instance)
				continue
			}
			if err := l.handleAccepted(msg); err != nil {
				return err
			}
		}
	}
}

// handleAccepted processes a 2B and emits any instances that have just
// reached quorum. When a higher v-rnd supersedes a tracked entry, the
// new entry stores the accompanying value (payload[1]), not the round.
func (l *Learner) handleAccepted(msg wire.Message) error {
	if msg.Instance < l.itl {
		return nil // already learned
	}
	if len(msg.Payload) < 2 {
		l.log.Printf("learner %d: malformed 2B for instance %d, dropping", l.id, msg.Instance)
		return nil
	}
	vRnd, vVal := msg.Payload[0], msg.Payload[1]

	entry, ok := l.entries[msg.Instance]
	switch {
	case !ok:
		l.entries[msg.Instance] = &learnerEntry{vRnd: vRnd, vVal: vVal, quorum: 1}
	case vRnd == entry.vRnd:
		entry.quorum++
	case vRnd > entry.vRnd:
		entry.vRnd = vRnd
		entry.vVal = vVal
		entry.quorum = 1
	default:
		// stale 2B for an already-superseded round; keep current entry
	}

	if msg.Instance != l.itl {
		return nil
	}

	for {
		entry, ok := l.entries[l.itl]
		if !ok || entry.quorum < l.quorum {
			break
		}
		if _, err := fmt.Fprintln(l.out, entry.vVal); err != nil {
			return fmt.Errorf("learner %d: write: %w", l.id, err)
		}
		if err := l.out.Flush(); err != nil {
			return fmt.Errorf("learner %d: flush: %w", l.id, err)
		}
		delete(l.entries, l.itl)
		l.itl++
	}
	return nil
}

// Close releases the learner's socket.
func (l *Learner) Close() error {
	return l.receiver.Close()
}
