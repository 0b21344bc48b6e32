package peer

import (
	"net"
	"net/netip"
	"testing"

	"github.com/copernet/peercrawler/net/wire"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
)

func addrMsg(endpoints ...string) *wire.MsgAddr {
	msg := wire.NewMsgAddr()
	for _, ep := range endpoints {
		host, port, _ := net.SplitHostPort(ep)
		ap := netip.AddrPortFrom(netip.MustParseAddr(host), mustPort(port))
		msg.AddAddress(wire.NewNetAddressAddrPort(ap, wire.SFNodeNetwork))
	}
	return msg
}

func mustPort(s string) uint16 {
	ap := netip.MustParseAddrPort("0.0.0.0:" + s)
	return ap.Port()
}

func commands(msgs []wire.Message) []string {
	var cmds []string
	for _, msg := range msgs {
		cmds = append(cmds, msg.Command())
	}
	return cmds
}

func TestTransition(t *testing.T) {
	version := NewVersionMessage(netip.MustParseAddrPort("1.1.1.1:8333"), netip.MustParseAddrPort("0.0.0.0:8333"), "/test:0.1/")
	addrs := addrMsg("1.2.3.4:8333", "[2001:db8::1]:8333", "[::ffff:5.6.7.8]:18333")
	unknown := &wire.MsgUnknown{Cmd: "ping", Payload: make([]byte, 8)}

	tests := []struct {
		state HandshakeState
		msg   wire.Message
		next  HandshakeState
		send  []string
		addrs []netip.AddrPort
	}{
		{AwaitingVersion, version, AwaitingGetAddrSent, []string{wire.CmdVerAck, wire.CmdGetAddr}, nil},
		{AwaitingVersion, wire.NewMsgVerAck(), AwaitingVersion, nil, nil},
		{AwaitingVersion, addrs, AwaitingVersion, nil, nil},
		{AwaitingVersion, unknown, AwaitingVersion, nil, nil},
		{AwaitingVerackSent, addrs, AwaitingVerackSent, nil, nil},
		{AwaitingGetAddrSent, version, AwaitingGetAddrSent, nil, nil},
		{AwaitingGetAddrSent, wire.NewMsgVerAck(), AwaitingGetAddrSent, nil, nil},
		{AwaitingGetAddrSent, addrs, CollectingAddresses, nil, []netip.AddrPort{
			netip.MustParseAddrPort("1.2.3.4:8333"),
			netip.MustParseAddrPort("5.6.7.8:18333"),
		}},
		{CollectingAddresses, addrMsg("9.9.9.9:8333"), CollectingAddresses, nil, []netip.AddrPort{
			netip.MustParseAddrPort("9.9.9.9:8333"),
		}},
		{CollectingAddresses, wire.NewMsgAddr(), CollectingAddresses, nil, []netip.AddrPort{}},
		{CollectingAddresses, version, CollectingAddresses, nil, nil},
		{Done, version, Done, nil, nil},
		{Done, addrs, Done, nil, nil},
	}

	for i, test := range tests {
		step := Transition(test.state, test.msg)
		assert.Equal(t, test.next, step.Next, "#%d %v on %s", i, test.state, test.msg.Command())
		assert.Equal(t, test.send, commands(step.Send), "#%d", i)
		assert.Equal(t, test.addrs, step.Addresses, "#%d: %s", i, spew.Sdump(step))
	}
}

func TestHandshakeStateStringer(t *testing.T) {
	tests := []struct {
		in   HandshakeState
		want string
	}{
		{AwaitingVersion, "AwaitingVersion"},
		{AwaitingVerackSent, "AwaitingVerackSent"},
		{AwaitingGetAddrSent, "AwaitingGetAddrSent"},
		{CollectingAddresses, "CollectingAddresses"},
		{Done, "Done"},
		{HandshakeState(42), "Unknown HandshakeState (42)"},
	}

	for i, test := range tests {
		assert.Equal(t, test.want, test.in.String(), "#%d", i)
	}
}
