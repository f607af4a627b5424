package submitter

import (
	"io"
	"log"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paxos/mcast"
	"paxos/wire"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestSubmitterSendsParsedValuesAndStopsOnBlankLine(t *testing.T) {
	group := &net.UDPAddr{IP: net.ParseIP("239.8.8.8"), Port: 40999}
	recv, err := mcast.NewReceiver(group)
	if err != nil {
		t.Skipf("multicast unavailable: %v", err)
	}
	defer recv.Close()

	s, err := New(0, group, discardLogger())
	require.NoError(t, err)
	defer s.Close()

	go func() {
		err := s.Run(strings.NewReader("10\n20\n\n30\n"))
		assert.NoError(t, err)
	}()

	for _, want := range []int32{10, 20} {
		msg, _, err := recv.Recv()
		require.NoError(t, err)
		assert.Equal(t, wire.PhaseSubmit, msg.Phase)
		assert.Equal(t, wire.NoneInstance, msg.Instance)
		assert.Equal(t, []int32{want}, msg.Payload)
	}
}

func TestSubmitterRejectsNonInteger(t *testing.T) {
	group := &net.UDPAddr{IP: net.ParseIP("239.8.8.9"), Port: 41000}
	s, err := New(0, group, discardLogger())
	if err != nil {
		t.Skipf("multicast unavailable: %v", err)
	}
	defer s.Close()

	err = s.Run(strings.NewReader("not-a-number\n"))
	assert.Error(t, err)
}
