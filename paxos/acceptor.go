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

// Acceptor drives the acceptor role: a single-threaded receive loop
// that promises and accepts per instance, emitting the 2B accepted
// message directly to the learners group to save the round trip
// through the proposer.
type Acceptor struct {
	id        int
	learners  *net.UDPAddr
	proposers *net.UDPAddr

	receiver *mcast.Receiver
	sender   *mcast.Sender

	log       *log.Logger
	instances map[int32]*acceptorState
}

// NewAcceptor constructs an Acceptor for the given config.
func NewAcceptor(id int, cfg *paxosconf.Config, logger *log.Logger) (*Acceptor, error) {
	receiver, err := mcast.NewReceiver(cfg.Acceptors)
	if err != nil {
		return nil, fmt.Errorf("acceptor %d: %w", id, err)
	}
	sender, err := mcast.NewSender()
	if err != nil {
		receiver.Close()
		return nil, fmt.Errorf("acceptor %d: %w", id, err)
	}

	return &Acceptor{
		id:        id,
		learners:  cfg.Learners,
		proposers: cfg.Proposers,
		receiver:  receiver,
		sender:    sender,
		log:       logger,
		instances: make(map[int32]*acceptorState),
	}, nil
}

// Run blocks receiving and handling 1A/2A messages until ctx is
// cancelled or a transport error occurs.
func (a *Acceptor) Run(ctx context.Context) error {
	msgs := make(chan wire.Message)
	recvErr := make(chan error, 1)
	go func() {
		for {
			msg, _, err := a.receiver.Recv()
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
			return fmt.Errorf("acceptor %d: receive: %w", a.id, err)
		case msg := <-msgs:
			var handleErr error
			switch msg.Phase {
			case wire.Phase1A:
				handleErr = a.handlePrepare(msg)
			case wire.Phase2A:
				handleErr = a.handleAccept(msg)
			default:
				a.log.Printf("acceptor %d: dropping message with unrecognised phase %d for instance %d", a.id, msg.Phase, msg.Instance)
			}
			if handleErr != nil {
				return handleErr
			}
		}
	}
}

// handlePrepare processes a 1A. State is created lazily on first 1A --
// there is nothing unsafe about promising an instance that has never
// been proposed before.
func (a *Acceptor) handlePrepare(msg wire.Message) error {
	if len(msg.Payload) < 1 {
		a.log.Printf("acceptor %d: malformed 1A for instance %d, dropping", a.id, msg.Instance)
		return nil
	}
	cRnd := msg.Payload[0]

	state, ok := a.instances[msg.Instance]
	if !ok {
		state = newAcceptorState()
		a.instances[msg.Instance] = state
	}
	state.armed = true

	if cRnd < state.rnd {
		return nil
	}
	state.rnd = cRnd

	payload := []int32{state.rnd, state.vRnd, state.vVal}
	if err := a.send(a.proposers, wire.Message{Instance: msg.Instance, Phase: wire.Phase1B, Payload: payload}); err != nil {
		return err
	}
	a.log.Printf("acceptor %d: instance %d promised round %d", a.id, msg.Instance, state.rnd)
	return nil
}

// handleAccept processes a 2A. A 2A is only honoured for an instance
// that already has state created by a prior 1A -- accepting on
// freshly-created state would let a value be chosen without ever
// running the prepare phase.
func (a *Acceptor) handleAccept(msg wire.Message) error {
	if len(msg.Payload) < 2 {
		a.log.Printf("acceptor %d: malformed 2A for instance %d, dropping", a.id, msg.Instance)
		return nil
	}
	cRnd, cVal := msg.Payload[0], msg.Payload[1]

	state, ok := a.instances[msg.Instance]
	if !ok || !state.armed {
		a.log.Printf("acceptor %d: dropping 2A for unprepared instance %d", a.id, msg.Instance)
		return nil
	}

	if cRnd < state.rnd {
		return nil
	}
	state.vRnd = cRnd
	state.vVal = cVal

	payload := []int32{state.vRnd, state.vVal}
	if err := a.send(a.learners, wire.Message{Instance: msg.Instance, Phase: wire.Phase2B, Payload: payload}); err != nil {
		return err
	}
	a.log.Printf("acceptor %d: instance %d accepted round %d value %d", a.id, msg.Instance, state.vRnd, state.vVal)
	return nil
}

func (a *Acceptor) send(dst *net.UDPAddr, msg wire.Message) error {
	if err := a.sender.Send(dst, msg); err != nil {
		return fmt.Errorf("acceptor %d: send: %w", a.id, err)
	}
	return nil
}

// Close releases the acceptor's sockets.
func (a *Acceptor) Close() error {
	a.receiver.Close()
	a.sender.Close()
	return nil
}
