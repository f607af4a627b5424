package mcast

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"paxos/wire"
)

// TestSendRecvRoundTrip exercises a real loopback multicast group. Some
// sandboxed CI runners disable multicast entirely, so a join failure
// skips rather than fails the test.
func TestSendRecvRoundTrip(t *testing.T) {
	group := &net.UDPAddr{IP: net.ParseIP("239.1.2.3"), Port: 30123}

	recv, err := NewReceiver(group)
	if err != nil {
		t.Skipf("multicast unavailable in this environment: %v", err)
	}
	defer recv.Close()

	sender, err := NewSender()
	require.NoError(t, err)
	defer sender.Close()

	want := wire.Message{Instance: 3, Phase: wire.Phase2A, Payload: []int32{0, 42}}

	done := make(chan struct{})
	var got wire.Message
	var recvErr error
	go func() {
		got, _, recvErr = recv.Recv()
		close(done)
	}()

	// give the receive goroutine time to block on ReadFrom
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, sender.Send(group, want))

	select {
	case <-done:
		require.NoError(t, recvErr)
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for multicast datagram")
	}
}
