// Package mcast wraps the two multicast UDP sockets every Paxos role
// needs: a receiver joined to the role's own group, and a sender bound
// to an arbitrary local port for outbound datagrams. It also carries the
// wire codec across the socket boundary so role code deals in
// wire.Message, not raw byte slices.
package mcast

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/net/ipv4"

	"paxos/wire"
)

// recvBufSize is the receive buffer size. The largest message in the
// protocol is 5 int32s (20 bytes); the margin guards against growth.
const recvBufSize = 128

// Receiver listens on one multicast group with address reuse enabled,
// so several processes of the same role may co-bind on one host.
type Receiver struct {
	conn *net.UDPConn
	pc   *ipv4.PacketConn
	buf  [recvBufSize]byte
}

// NewReceiver joins group on all multicast-capable interfaces and binds
// with SO_REUSEADDR set.
func NewReceiver(group *net.UDPAddr) (*Receiver, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, rc syscall.RawConn) error {
			return setReuseAddr(rc)
		},
	}
	pconn, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf(":%d", group.Port))
	if err != nil {
		return nil, fmt.Errorf("mcast: listen on port %d: %w", group.Port, err)
	}
	conn := pconn.(*net.UDPConn)

	pc := ipv4.NewPacketConn(conn)
	ifaces, err := net.Interfaces()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("mcast: list interfaces: %w", err)
	}

	joined := 0
	for _, iface := range ifaces {
		if iface.Flags&net.FlagMulticast == 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if err := pc.JoinGroup(&iface, &net.UDPAddr{IP: group.IP}); err == nil {
			joined++
		}
	}
	if joined == 0 {
		conn.Close()
		return nil, fmt.Errorf("mcast: failed to join group %s on any interface", group.IP)
	}

	return &Receiver{conn: conn, pc: pc}, nil
}

// Recv blocks for the next datagram and decodes it as a wire.Message.
func (r *Receiver) Recv() (wire.Message, *net.UDPAddr, error) {
	n, _, src, err := r.pc.ReadFrom(r.buf[:])
	if err != nil {
		return wire.Message{}, nil, err
	}
	msg, err := wire.DecodeMessage(r.buf[:n])
	if err != nil {
		return wire.Message{}, nil, err
	}
	srcUDP, _ := src.(*net.UDPAddr)
	return msg, srcUDP, nil
}

// Close releases the underlying socket.
func (r *Receiver) Close() error {
	return r.conn.Close()
}

// Sender sends datagrams from an arbitrary local port.
type Sender struct {
	conn *net.UDPConn
}

// NewSender binds an outbound-only socket on an OS-chosen port.
func NewSender() (*Sender, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("mcast: bind sender: %w", err)
	}
	return &Sender{conn: conn}, nil
}

// Send encodes msg and writes it to dst.
func (s *Sender) Send(dst *net.UDPAddr, msg wire.Message) error {
	_, err := s.conn.WriteToUDP(wire.EncodeMessage(msg), dst)
	return err
}

// Close releases the underlying socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}
