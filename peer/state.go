package peer

import (
	"fmt"
	"net/netip"

	"github.com/copernet/peercrawler/net/wire"
)

// HandshakeState is the progress of a discovery session with one peer.
type HandshakeState int

const (
	AwaitingVersion HandshakeState = iota
	AwaitingVerackSent
	AwaitingGetAddrSent
	CollectingAddresses
	Done
)

var stateStrings = map[HandshakeState]string{
	AwaitingVersion:     "AwaitingVersion",
	AwaitingVerackSent:  "AwaitingVerackSent",
	AwaitingGetAddrSent: "AwaitingGetAddrSent",
	CollectingAddresses: "CollectingAddresses",
	Done:                "Done",
}

func (s HandshakeState) String() string {
	if str, ok := stateStrings[s]; ok {
		return str
	}
	return fmt.Sprintf("Unknown HandshakeState (%d)", int(s))
}

// Step is the outcome of feeding one received message to Transition.
type Step struct {
	Next      HandshakeState
	Send      []wire.Message
	Addresses []netip.AddrPort
}

// Transition computes the reaction to msg in state. It performs no I/O.
//
// The peer's version is answered with verack and getaddr right away; its
// own verack is not waited for. Address lists count only once getaddr has
// gone out, and only their IPv4 entries are reported. Every other message
// leaves the state unchanged.
func Transition(state HandshakeState, msg wire.Message) Step {
	switch m := msg.(type) {
	case *wire.MsgVersion:
		if state == AwaitingVersion {
			return Step{
				Next: AwaitingGetAddrSent,
				Send: []wire.Message{wire.NewMsgVerAck(), wire.NewMsgGetAddr()},
			}
		}

	case *wire.MsgAddr:
		if state == AwaitingGetAddrSent || state == CollectingAddresses {
			return Step{
				Next:      CollectingAddresses,
				Addresses: ipv4Addresses(m),
			}
		}
	}

	return Step{Next: state}
}

func ipv4Addresses(msg *wire.MsgAddr) []netip.AddrPort {
	addrs := make([]netip.AddrPort, 0, len(msg.AddrList))
	for _, na := range msg.AddrList {
		if addr, ok := na.IPv4AddrPort(); ok {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}
