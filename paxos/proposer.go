package paxos

import (
	"context"
	"fmt"
	"log"
	"net"

	"paxos/mcast"
	"paxos/paxosconf"
	"paxos/wire"
)

// completedBacklog approximates an unbounded one-way channel between
// the proposer's main loop and its timer task: in practice no single
// proposer sustains more than a few thousand in-flight instances, so a
// generously sized buffer never blocks the main loop, which must never
// wait on the timer.
const completedBacklog = 1 << 16

// Proposer drives the proposer role: sequencing client submissions into
// instances, running phase 1/2 of Paxos, and hosting the restart timer
// task. The proposer's instance map is mutated only from the main loop
// (Run); the timer task communicates with it solely by receiving
// completed instance numbers over a one-way channel, so no lock guards
// it.
type Proposer struct {
	id        int
	quorum    int
	acceptors *net.UDPAddr
	proposers *net.UDPAddr

	receiver *mcast.Receiver
	sender   *mcast.Sender
	timer    *restartTimer

	log       *log.Logger
	instances map[int32]*proposalState
	next      int32
	completed chan int32
	fatal     chan error
}

// NewProposer constructs a Proposer for the given config and quorum
// size. Quorum is ⌊|acceptors|/2⌋+1 in a correctly sized deployment; it
// is a parameter here rather than a compile-time constant so tests can
// exercise small and large ensembles alike.
func NewProposer(id int, cfg *paxosconf.Config, quorum int, logger *log.Logger) (*Proposer, error) {
	receiver, err := mcast.NewReceiver(cfg.Proposers)
	if err != nil {
		return nil, fmt.Errorf("proposer %d: %w", id, err)
	}
	sender, err := mcast.NewSender()
	if err != nil {
		receiver.Close()
		return nil, fmt.Errorf("proposer %d: %w", id, err)
	}
	timerSender, err := mcast.NewSender()
	if err != nil {
		receiver.Close()
		sender.Close()
		return nil, fmt.Errorf("proposer %d: %w", id, err)
	}

	completed := make(chan int32, completedBacklog)
	fatal := make(chan error, 1)

	return &Proposer{
		id:        id,
		quorum:    quorum,
		acceptors: cfg.Acceptors,
		proposers: cfg.Proposers,
		receiver:  receiver,
		sender:    sender,
		timer:     newRestartTimer(completed, timerSender, cfg.Proposers, logger, fatal),
		log:       logger,
		instances: make(map[int32]*proposalState),
		completed: completed,
		fatal:     fatal,
	}, nil
}

// Run starts the restart timer and the main receive loop. It blocks
// until ctx is cancelled or a transport error occurs; receive and send
// failures are both treated as fatal.
func (p *Proposer) Run(ctx context.Context) error {
	go p.timer.run(ctx)

	msgs := make(chan wire.Message)
	recvErr := make(chan error, 1)
	go func() {
		for {
			msg, _, err := p.receiver.Recv()
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
			return fmt.Errorf("proposer %d: receive: %w", p.id, err)
		case err := <-p.fatal:
			return err
		case msg := <-msgs:
			var handleErr error
			switch msg.Phase {
			case wire.PhaseSubmit:
				handleErr = p.handleSubmit(msg)
			case wire.Phase1B:
				handleErr = p.handlePromise(msg)
			case wire.PhaseRestart:
				handleErr = p.handleRestart(msg)
			default:
				p.log.Printf("proposer %d: dropping message with unrecognised phase %d for instance %d", p.id, msg.Phase, msg.Instance)
			}
			if handleErr != nil {
				return handleErr
			}
		}
	}
}

// handleSubmit allocates the next instance for a client-submitted value
// and opens phase 1 by sending a round-0 1A to the acceptors.
func (p *Proposer) handleSubmit(msg wire.Message) error {
	if len(msg.Payload) < 1 {
		p.log.Printf("proposer %d: malformed submit message, dropping", p.id)
		return nil
	}
	value := msg.Payload[0]

	n := p.next
	p.next++
	p.instances[n] = newProposalState(value)

	if err := p.send(p.acceptors, wire.Message{Instance: n, Phase: wire.Phase1A, Payload: []int32{0}}); err != nil {
		return err
	}
	p.log.Printf("proposer %d: instance %d <- value %d, sent 1A round 0", p.id, n, value)
	return nil
}

// handlePromise processes a 1B. The acceptance test is round equality,
// not "c-rnd >= rnd" -- a 1B belongs to this round or it is
// stale/foreign and is discarded.
func (p *Proposer) handlePromise(msg wire.Message) error {
	state, ok := p.instances[msg.Instance]
	if !ok {
		p.log.Printf("proposer %d: dropping 1B for unknown instance %d", p.id, msg.Instance)
		return nil
	}
	if len(msg.Payload) < 3 {
		p.log.Printf("proposer %d: malformed 1B for instance %d, dropping", p.id, msg.Instance)
		return nil
	}
	rnd, vRnd, vVal := msg.Payload[0], msg.Payload[1], msg.Payload[2]

	if rnd != state.cRnd {
		return nil
	}

	state.q++
	if vRnd > state.k {
		state.k = vRnd
		state.kVal = vVal
	}

	if state.q >= p.quorum {
		value := state.chosenValue()
		if err := p.send(p.acceptors, wire.Message{Instance: msg.Instance, Phase: wire.Phase2A, Payload: []int32{state.cRnd, value}}); err != nil {
			return err
		}
		p.log.Printf("proposer %d: instance %d reached quorum at round %d, sent 2A value %d", p.id, msg.Instance, state.cRnd, value)

		select {
		case p.completed <- msg.Instance:
		default:
			p.log.Printf("proposer %d: timer backlog full, instance %d not queued for restart tracking", p.id, msg.Instance)
		}
	}
	return nil
}

// handleRestart processes a phase-3 self-addressed restart: bump the
// instance's round and retry phase 1.
func (p *Proposer) handleRestart(msg wire.Message) error {
	state, ok := p.instances[msg.Instance]
	if !ok {
		p.log.Printf("proposer %d: dropping restart for unknown instance %d", p.id, msg.Instance)
		return nil
	}
	if len(msg.Payload) < 1 {
		p.log.Printf("proposer %d: malformed restart for instance %d, dropping", p.id, msg.Instance)
		return nil
	}
	newRound := msg.Payload[0]

	state.cRnd = newRound
	state.q = 0
	if err := p.send(p.acceptors, wire.Message{Instance: msg.Instance, Phase: wire.Phase1A, Payload: []int32{newRound}}); err != nil {
		return err
	}
	p.log.Printf("proposer %d: instance %d restarted at round %d", p.id, msg.Instance, newRound)
	return nil
}

func (p *Proposer) send(dst *net.UDPAddr, msg wire.Message) error {
	if err := p.sender.Send(dst, msg); err != nil {
		return fmt.Errorf("proposer %d: send: %w", p.id, err)
	}
	return nil
}

// Close releases the proposer's sockets.
func (p *Proposer) Close() error {
	p.receiver.Close()
	p.sender.Close()
	p.timer.sender.Close()
	return nil
}
