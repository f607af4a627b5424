package paxos

import (
	"context"
	"fmt"
	"log"
	"net"
	"sort"
	"time"

	"paxos/mcast"
	"paxos/wire"
)

// Timeout is the restart timer's tick period.
const Timeout = 500 * time.Millisecond

// restartTimer is the proposer's background timer task: it owns a
// sorted set of instance numbers that have reached 2A ("completed
// enough") and, once per tick, restarts any hole below the highest
// known instance. completed is fed by the proposer's main loop only --
// single producer, single consumer, no lock needed.
type restartTimer struct {
	completed      chan int32
	sender         *mcast.Sender
	proposersGroup *net.UDPAddr
	log            *log.Logger

	instances map[int32]struct{}
	round     int32

	lastMax    int32
	lastMaxSet bool
	staleTicks int

	fatal chan<- error
}

func newRestartTimer(completed chan int32, sender *mcast.Sender, proposersGroup *net.UDPAddr, logger *log.Logger, fatal chan<- error) *restartTimer {
	return &restartTimer{
		completed:      completed,
		sender:         sender,
		proposersGroup: proposersGroup,
		log:            logger,
		instances:      make(map[int32]struct{}),
		lastMax:        -1,
		fatal:          fatal,
	}
}

// run drains completed instance numbers and scans for holes once per
// Timeout until ctx is cancelled.
func (rt *restartTimer) run(ctx context.Context) {
	ticker := time.NewTicker(Timeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.drain()
			rt.scanAndRestart()
		}
	}
}

func (rt *restartTimer) drain() {
	for {
		select {
		case instance := <-rt.completed:
			rt.instances[instance] = struct{}{}
		default:
			return
		}
	}
}

func (rt *restartTimer) scanAndRestart() {
	if len(rt.instances) == 0 {
		return
	}

	sorted := make([]int32, 0, len(rt.instances))
	for instance := range rt.instances {
		sorted = append(sorted, instance)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	prev := int32(-1)
	for _, ins := range sorted {
		if ins != prev+1 {
			for missing := prev + 1; missing < ins; missing++ {
				rt.restart(missing)
			}
		}
		prev = ins
	}

	max := sorted[len(sorted)-1]
	if rt.lastMaxSet && rt.lastMax == max {
		rt.staleTicks++
	} else {
		rt.staleTicks = 0
	}
	rt.lastMax = max
	rt.lastMaxSet = true

	// An instance stuck at the high-water mark is never a "hole" below
	// itself, so the scan above never retries it. Restart it too once it
	// has sat unchanged for a full extra tick.
	if rt.staleTicks >= 1 {
		rt.restart(max)
	}
}

func (rt *restartTimer) restart(instance int32) {
	rt.round++
	msg := wire.Message{Instance: instance, Phase: wire.PhaseRestart, Payload: []int32{rt.round}}
	if err := rt.sender.Send(rt.proposersGroup, msg); err != nil {
		select {
		case rt.fatal <- fmt.Errorf("timer: send restart for instance %d: %w", instance, err):
		default:
		}
		return
	}
	rt.log.Printf("timer: restarted instance %d at round %d", instance, rt.round)
}
