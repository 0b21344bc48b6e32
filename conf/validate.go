package conf

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/copernet/peercrawler/errcode"
	"github.com/copernet/peercrawler/log"
	"github.com/copernet/peercrawler/net/wire"
	"github.com/pkg/errors"
)

// Validate checks every setting before any network activity starts.
func (c *Configuration) Validate() error {
	if _, err := netip.ParseAddrPort(c.P2P.RemoteAddress); err != nil {
		return errcode.NewWithCause(errcode.InvalidAddress, errors.Wrap(err, "p2p.remoteaddress"))
	}
	if _, err := netip.ParseAddrPort(c.P2P.LocalAddress); err != nil {
		return errcode.NewWithCause(errcode.InvalidAddress, errors.Wrap(err, "p2p.localaddress"))
	}
	if _, err := wire.ParseBitcoinNet(c.P2P.Network); err != nil {
		return errcode.NewWithCause(errcode.InvalidOption, errors.Wrap(err, "p2p.network"))
	}
	if len(c.P2P.UserAgent) > wire.MaxUserAgentLen {
		return invalidOption("p2p.useragent", fmt.Sprintf("longer than %d bytes", wire.MaxUserAgentLen))
	}

	nonNegative := []struct {
		key   string
		value float64
	}{
		{"crawl.addresslimit", float64(c.Crawl.AddressLimit)},
		{"crawl.connectiontimeout", float64(c.Crawl.ConnectionTimeout)},
		{"crawl.peerconnectiontimeout", float64(c.Crawl.PeerConnectionTimeout)},
		{"crawl.peeraddresscap", float64(c.Crawl.PeerAddressCap)},
		{"crawl.maxconcurrentsessions", float64(c.Crawl.MaxConcurrentSessions)},
		{"crawl.dialrate", c.Crawl.DialRate},
		{"crawl.idletimeout", float64(c.Crawl.IdleTimeout)},
	}
	for _, n := range nonNegative {
		if n.value < 0 {
			return invalidOption(n.key, fmt.Sprintf("must not be negative, got %v", n.value))
		}
	}

	if !log.ValidLevel(c.Log.Level) {
		return invalidOption("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	if c.Metrics.Listen != "" {
		if err := checkListenAddr(c.Metrics.Listen); err != nil {
			return errcode.NewWithCause(errcode.InvalidAddress, errors.Wrap(err, "metrics.listen"))
		}
	}
	return nil
}

// checkListenAddr accepts what net.Listen accepts for tcp, including an
// empty host such as ":9100".
func checkListenAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return errors.Errorf("invalid port %q", port)
	}
	if host != "" && host != "localhost" {
		if _, err := netip.ParseAddr(host); err != nil {
			return err
		}
	}
	return nil
}

func invalidOption(key, desc string) error {
	return errcode.NewWithCause(errcode.InvalidOption, errors.Errorf("%s: %s", key, desc))
}

// SeedAddress is the validated p2p.remoteaddress.
func (c *Configuration) SeedAddress() netip.AddrPort {
	return netip.MustParseAddrPort(c.P2P.RemoteAddress)
}

// LocalAddr is the validated p2p.localaddress.
func (c *Configuration) LocalAddr() netip.AddrPort {
	return netip.MustParseAddrPort(c.P2P.LocalAddress)
}

func (c *Configuration) BitcoinNet() wire.BitcoinNet {
	net, _ := wire.ParseBitcoinNet(c.P2P.Network)
	return net
}

func (c *Configuration) SeedTimeout() time.Duration {
	return time.Duration(c.Crawl.ConnectionTimeout) * time.Second
}

func (c *Configuration) PeerTimeout() time.Duration {
	return time.Duration(c.Crawl.PeerConnectionTimeout) * time.Second
}

func (c *Configuration) IdleTimeout() time.Duration {
	return time.Duration(c.Crawl.IdleTimeout) * time.Second
}
