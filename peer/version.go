package peer

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"net/netip"
	"time"

	"github.com/copernet/peercrawler/net/wire"
)

// NewVersionMessage builds the version message that opens a session with
// remote. It advertises no services, a start height of zero and no interest
// in transaction relay.
func NewVersionMessage(remote, local netip.AddrPort, userAgent string) *wire.MsgVersion {
	you := wire.NewNetAddressAddrPort(remote, 0)
	me := wire.NewNetAddressAddrPort(local, 0)

	msg := wire.NewMsgVersion(me, you, newNonce(), 0)
	msg.Timestamp = time.Unix(time.Now().Unix(), 0)
	msg.UserAgent = userAgent
	msg.DisableRelayTx = true
	return msg
}

// newNonce returns a random non-zero nonce.
func newNonce() uint64 {
	for {
		nonce, err := randomUint64(rand.Reader)
		if err != nil {
			// The system source failed; fall back on the clock, which
			// is still unique enough for an informational nonce.
			nonce = uint64(time.Now().UnixNano())
		}
		if nonce != 0 {
			return nonce
		}
	}
}

func randomUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
