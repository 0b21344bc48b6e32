package crawler

import (
	"context"
	"net/netip"
	"time"

	"github.com/copernet/peercrawler/log"
	"github.com/copernet/peercrawler/net/connmgr"
	"github.com/copernet/peercrawler/peer"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/eapache/queue.v1"
)

// Config describes one crawl.
type Config struct {
	Seed      netip.AddrPort
	Local     netip.AddrPort
	UserAgent string

	// AddressLimit is the number of addresses to report. It is also the
	// address cap of the seed session.
	AddressLimit int

	SeedTimeout time.Duration
	PeerTimeout time.Duration

	// PeerAddressCap is the address cap of every session after the seed.
	PeerAddressCap int

	// MaxConcurrentSessions bounds the sessions in flight within a round.
	// Zero starts every session of a round at once.
	MaxConcurrentSessions int
}

// SessionFunc runs one discovery session against addr and returns the
// addresses the peer reported.
type SessionFunc func(ctx context.Context, addr netip.AddrPort, timeout time.Duration, addressCap int) ([]netip.AddrPort, error)

// Crawler walks the peer graph breadth first, one round per hop, starting
// from a single seed.
type Crawler struct {
	cfg     Config
	session SessionFunc

	visited  *addrSet
	frontier *queue.Queue
}

// New returns a crawler that reaches peers through dialer.
func New(cfg *Config, dialer *connmgr.Dialer) *Crawler {
	return NewWithSession(cfg, DialSession(dialer, cfg.Local, cfg.UserAgent))
}

func NewWithSession(cfg *Config, session SessionFunc) *Crawler {
	return &Crawler{
		cfg:     *cfg,
		session: session,
	}
}

// DialSession returns a SessionFunc that connects through dialer and runs a
// peer.Session over the connection.
func DialSession(dialer *connmgr.Dialer, local netip.AddrPort, userAgent string) SessionFunc {
	return func(ctx context.Context, addr netip.AddrPort, timeout time.Duration, addressCap int) ([]netip.AddrPort, error) {
		conn, err := dialer.Dial(ctx, addr, timeout)
		if err != nil {
			return nil, err
		}
		s := peer.NewSession(conn, addr, &peer.Config{
			Local:      local,
			UserAgent:  userAgent,
			AddressCap: addressCap,
		})
		return s.Run()
	}
}

// Crawl runs the crawl and returns up to AddressLimit distinct addresses in
// ascending order. Only a failed seed session is an error; any other peer
// that fails simply contributes nothing. Cancelling ctx stops the crawl
// after the round in progress, or with no addresses if the seed session
// was still running.
func (c *Crawler) Crawl(ctx context.Context) ([]netip.AddrPort, error) {
	c.visited = newAddrSet()
	c.frontier = queue.New()
	metricVisited.Set(0)
	metricFrontier.Set(0)

	log.Print("crawler", "info", "contacting seed %s", c.cfg.Seed)
	addrs, err := c.session(ctx, c.cfg.Seed, c.cfg.SeedTimeout, c.cfg.AddressLimit)
	if err != nil {
		metricSessions.WithLabelValues(sessionResultFailed).Inc()
		if ctx.Err() != nil {
			log.Print("crawler", "warn", "crawl interrupted while contacting seed %s: %v", c.cfg.Seed, err)
			return []netip.AddrPort{}, nil
		}
		return nil, errors.Wrapf(err, "seed %s", c.cfg.Seed)
	}
	metricSessions.WithLabelValues(sessionResultOK).Inc()
	c.merge(addrs)
	log.Print("crawler", "info", "seed %s reported %d addresses", c.cfg.Seed, len(addrs))

	for round := 1; c.visited.Len() < c.cfg.AddressLimit && c.frontier.Length() > 0; round++ {
		if err := ctx.Err(); err != nil {
			log.Print("crawler", "warn", "crawl interrupted before round %d: %v", round, err)
			break
		}

		batch := c.drainFrontier()
		metricRounds.Inc()
		log.Print("crawler", "info", "round %d: contacting %d peers, %d addresses known",
			round, len(batch), c.visited.Len())

		results := c.runRound(ctx, batch)
		for _, addrs := range results {
			c.merge(addrs)
		}

		log.Print("crawler", "info", "round %d done: %d addresses known, %d to contact",
			round, c.visited.Len(), c.frontier.Length())
	}

	return c.visited.First(c.cfg.AddressLimit), nil
}

// runRound runs one session per address and waits for all of them. Each
// session writes only its own result slot.
func (c *Crawler) runRound(ctx context.Context, batch []netip.AddrPort) [][]netip.AddrPort {
	results := make([][]netip.AddrPort, len(batch))

	var g errgroup.Group
	if c.cfg.MaxConcurrentSessions > 0 {
		g.SetLimit(c.cfg.MaxConcurrentSessions)
	}

	for i, addr := range batch {
		i, addr := i, addr
		g.Go(func() error {
			addrs, err := c.session(ctx, addr, c.cfg.PeerTimeout, c.cfg.PeerAddressCap)
			if err != nil {
				metricSessions.WithLabelValues(sessionResultFailed).Inc()
				log.Print("crawler", "debug", "session with %s failed: %v", addr, err)
				return nil
			}
			metricSessions.WithLabelValues(sessionResultOK).Inc()
			results[i] = addrs
			return nil
		})
	}
	g.Wait()

	return results
}

// merge records addrs as visited and queues the ones not seen before.
func (c *Crawler) merge(addrs []netip.AddrPort) {
	for _, addr := range addrs {
		if c.visited.Insert(addr) {
			c.frontier.Add(addr)
			metricDiscovered.Inc()
		}
	}
	metricVisited.Set(float64(c.visited.Len()))
	metricFrontier.Set(float64(c.frontier.Length()))
}

func (c *Crawler) drainFrontier() []netip.AddrPort {
	batch := make([]netip.AddrPort, 0, c.frontier.Length())
	for c.frontier.Length() > 0 {
		batch = append(batch, c.frontier.Remove().(netip.AddrPort))
	}
	metricFrontier.Set(0)
	return batch
}
