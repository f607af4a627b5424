// Package submitter implements the client role: reading integer values
// from an input stream and submitting them to the proposers group.
package submitter

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"paxos/mcast"
	"paxos/wire"
)

// Throttle is the pause between successive sends, to reduce burst loss
// on the multicast channel.
const Throttle = time.Millisecond

// Submitter reads integer lines and forwards each to the proposers
// group as a phase-0 submit message.
type Submitter struct {
	id        int
	sender    *mcast.Sender
	proposers *net.UDPAddr
	log       *log.Logger
}

// New constructs a Submitter bound to proposers.
func New(id int, proposers *net.UDPAddr, logger *log.Logger) (*Submitter, error) {
	sender, err := mcast.NewSender()
	if err != nil {
		return nil, fmt.Errorf("client %d: %w", id, err)
	}
	return &Submitter{id: id, sender: sender, proposers: proposers, log: logger}, nil
}

// Run reads lines from r until a blank line or EOF. Each non-blank line
// must parse as a signed 32-bit integer; a parse failure is fatal.
func (s *Submitter) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			s.log.Printf("client %d: blank line, no more values", s.id)
			return nil
		}

		n, err := strconv.ParseInt(line, 10, 32)
		if err != nil {
			return fmt.Errorf("client %d: value %q is not an integer: %w", s.id, line, err)
		}

		msg := wire.Message{Instance: wire.NoneInstance, Phase: wire.PhaseSubmit, Payload: []int32{int32(n)}}
		if err := s.sender.Send(s.proposers, msg); err != nil {
			return fmt.Errorf("client %d: send: %w", s.id, err)
		}
		s.log.Printf("client %d: sent %d", s.id, n)

		time.Sleep(Throttle)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("client %d: read stdin: %w", s.id, err)
	}
	return nil
}

// Close releases the submitter's socket.
func (s *Submitter) Close() error {
	return s.sender.Close()
}
