package connmgr

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/copernet/peercrawler/errcode"
	"github.com/copernet/peercrawler/log"
	"github.com/copernet/peercrawler/net/wire"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Config holds the settings shared by every connection a Dialer opens.
type Config struct {
	// ChainNet selects the network magic used for framing.
	ChainNet wire.BitcoinNet

	// IdleTimeout ends a stream that delivers no bytes for this long.
	// Zero waits forever.
	IdleTimeout time.Duration

	// DialRate caps new connection attempts per second. Zero or less
	// disables the limit.
	DialRate float64
}

// Dialer opens outbound peer connections. It is safe for concurrent use.
type Dialer struct {
	cfg     Config
	limiter *rate.Limiter
}

func NewDialer(cfg *Config) *Dialer {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.DialRate > 0 {
		limiter.SetLimit(rate.Limit(cfg.DialRate))
	}
	return &Dialer{cfg: *cfg, limiter: limiter}
}

// Dial connects to addr, giving up after timeout. A zero timeout leaves the
// attempt bounded only by ctx and the operating system.
func (d *Dialer) Dial(ctx context.Context, addr netip.AddrPort, timeout time.Duration) (*Conn, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, errcode.NewWithCause(errcode.ConnectionFailed, errors.Wrapf(err, "dial %s", addr))
	}

	dialer := net.Dialer{Timeout: timeout}
	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		log.Print("connmgr", "debug", "dial %s failed after %v: %v", addr, time.Since(start), err)
		return nil, dialError(addr, err)
	}

	log.Print("connmgr", "debug", "connected to %s in %v", addr, time.Since(start))
	return newConn(conn, addr, &d.cfg), nil
}

func dialError(addr netip.AddrPort, err error) error {
	cause := errors.Wrapf(err, "dial %s", addr)
	if isTimeout(err) {
		return errcode.NewWithCause(errcode.ConnectionTimedOut, cause)
	}
	return errcode.NewWithCause(errcode.ConnectionFailed, cause)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
