package peer

import (
	"io"
	"net/netip"
	"testing"

	"github.com/copernet/peercrawler/errcode"
	"github.com/copernet/peercrawler/net/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStream replays a fixed sequence of reads and records writes.
type scriptedStream struct {
	reads     []readResult
	written   []wire.Message
	failWrite string
	closed    bool
}

type readResult struct {
	msg wire.Message
	err error
}

func (s *scriptedStream) ReadMessage() (wire.Message, error) {
	if len(s.reads) == 0 {
		return nil, errcode.NewWithCause(errcode.ConnectionLost, io.EOF)
	}
	r := s.reads[0]
	s.reads = s.reads[1:]
	return r.msg, r.err
}

func (s *scriptedStream) WriteMessage(msg wire.Message) error {
	if msg.Command() == s.failWrite {
		return errcode.NewWithCause(errcode.SendingFailed, io.ErrClosedPipe)
	}
	s.written = append(s.written, msg)
	return nil
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

func msgs(in ...wire.Message) []readResult {
	out := make([]readResult, 0, len(in))
	for _, msg := range in {
		out = append(out, readResult{msg: msg})
	}
	return out
}

func decodeErr() readResult {
	return readResult{err: errcode.New(errcode.DecodeError)}
}

var (
	testRemote = netip.MustParseAddrPort("79.56.220.96:8333")
	testConfig = Config{
		Local:      netip.MustParseAddrPort("0.0.0.0:8333"),
		UserAgent:  "/Satoshi:25.0.0/",
		AddressCap: 5000,
	}
)

func peerVersion() *wire.MsgVersion {
	return NewVersionMessage(netip.MustParseAddrPort("0.0.0.0:8333"), testRemote, "/Satoshi:26.0.0/")
}

func parseAll(endpoints ...string) []netip.AddrPort {
	out := make([]netip.AddrPort, 0, len(endpoints))
	for _, ep := range endpoints {
		out = append(out, netip.MustParseAddrPort(ep))
	}
	return out
}

func runSession(t *testing.T, stream *scriptedStream, cfg Config) ([]netip.AddrPort, error) {
	t.Helper()
	s := NewSession(stream, testRemote, &cfg)
	addrs, err := s.Run()
	assert.True(t, stream.closed, "stream left open")
	assert.Equal(t, Done, s.State())
	return addrs, err
}

func TestSessionCollectsAddresses(t *testing.T) {
	stream := &scriptedStream{reads: msgs(
		peerVersion(),
		wire.NewMsgVerAck(),
		addrMsg("10.0.0.2:8333", "10.0.0.1:8333", "[2001:db8::2]:8333"),
		&wire.MsgUnknown{Cmd: "sendcmpct"},
		addrMsg("10.0.0.1:8333", "10.0.0.3:18333"),
	)}

	addrs, err := runSession(t, stream, testConfig)
	require.NoError(t, err)
	assert.Equal(t, parseAll("10.0.0.1:8333", "10.0.0.2:8333", "10.0.0.3:18333"), addrs)

	require.Len(t, stream.written, 3)
	assert.Equal(t, []string{wire.CmdVersion, wire.CmdVerAck, wire.CmdGetAddr}, commands(stream.written))
	version := stream.written[0].(*wire.MsgVersion)
	you, _ := version.AddrYou.AddrPort()
	assert.Equal(t, testRemote, you)
}

func TestSessionIgnoresEarlyAddr(t *testing.T) {
	stream := &scriptedStream{reads: msgs(
		addrMsg("10.0.0.9:8333"),
		peerVersion(),
		addrMsg("10.0.0.1:8333"),
	)}

	addrs, err := runSession(t, stream, testConfig)
	require.NoError(t, err)
	assert.Equal(t, parseAll("10.0.0.1:8333"), addrs)
}

func TestSessionAddressCap(t *testing.T) {
	stream := &scriptedStream{reads: msgs(
		peerVersion(),
		addrMsg("10.0.0.1:8333", "10.0.0.2:8333"),
		addrMsg("10.0.0.3:8333"),
		addrMsg("10.0.0.4:8333"),
	)}

	cfg := testConfig
	cfg.AddressCap = 3
	addrs, err := runSession(t, stream, cfg)
	require.NoError(t, err)
	assert.Equal(t, parseAll("10.0.0.1:8333", "10.0.0.2:8333", "10.0.0.3:8333"), addrs)
	assert.Len(t, stream.reads, 1, "session kept reading past its cap")
}

func TestSessionZeroCap(t *testing.T) {
	stream := &scriptedStream{reads: msgs(
		peerVersion(),
		addrMsg("10.0.0.1:8333"),
	)}

	cfg := testConfig
	cfg.AddressCap = 0
	addrs, err := runSession(t, stream, cfg)
	require.NoError(t, err)
	assert.Empty(t, addrs)
	assert.Equal(t, []string{wire.CmdVersion, wire.CmdVerAck, wire.CmdGetAddr}, commands(stream.written))
}

func TestSessionStreamEnds(t *testing.T) {
	addrs, err := runSession(t, &scriptedStream{}, testConfig)
	require.NoError(t, err)
	assert.Empty(t, addrs)

	stream := &scriptedStream{reads: msgs(peerVersion(), wire.NewMsgVerAck())}
	addrs, err = runSession(t, stream, testConfig)
	require.NoError(t, err)
	assert.Empty(t, addrs)
}

func TestSessionDecodeErrors(t *testing.T) {
	// Errors separated by a good message never add up to the limit.
	var reads []readResult
	reads = append(reads, msgs(peerVersion())...)
	for i := 0; i < 3; i++ {
		for j := 0; j < MaxConsecutiveDecodeErrors-1; j++ {
			reads = append(reads, decodeErr())
		}
		reads = append(reads, msgs(addrMsg("10.0.0.1:8333"))...)
	}
	stream := &scriptedStream{reads: reads}
	addrs, err := runSession(t, stream, testConfig)
	require.NoError(t, err)
	assert.Equal(t, parseAll("10.0.0.1:8333"), addrs)

	// A run of them ends the session before the rest of the stream.
	reads = msgs(peerVersion(), addrMsg("10.0.0.1:8333"))
	for j := 0; j < MaxConsecutiveDecodeErrors; j++ {
		reads = append(reads, decodeErr())
	}
	reads = append(reads, msgs(addrMsg("10.0.0.2:8333"))...)
	stream = &scriptedStream{reads: reads}
	addrs, err = runSession(t, stream, testConfig)
	require.NoError(t, err)
	assert.Equal(t, parseAll("10.0.0.1:8333"), addrs)
	assert.Len(t, stream.reads, 1)
}

func TestSessionSendFailure(t *testing.T) {
	stream := &scriptedStream{failWrite: wire.CmdVersion}
	_, err := runSession(t, stream, testConfig)
	assert.True(t, errcode.IsErrorCode(err, errcode.SendingFailed), "%v", err)

	stream = &scriptedStream{failWrite: wire.CmdGetAddr, reads: msgs(peerVersion())}
	s := NewSession(stream, testRemote, &testConfig)
	_, err = s.Run()
	assert.True(t, errcode.IsErrorCode(err, errcode.SendingFailed), "%v", err)
	assert.True(t, stream.closed)
}
