package peer

import (
	"fmt"
	"net/netip"
	"sort"

	"github.com/copernet/peercrawler/errcode"
	"github.com/copernet/peercrawler/log"
	"github.com/copernet/peercrawler/net/wire"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"gopkg.in/fatih/set.v0"
)

// MaxConsecutiveDecodeErrors is the number of undecodable frames in a row,
// with nothing decoded in between, after which a peer is given up on.
const MaxConsecutiveDecodeErrors = 8

// MessageStream is the connection a Session talks over.
type MessageStream interface {
	// ReadMessage returns the next message. A DecodeError leaves the
	// stream usable; any other error ends it.
	ReadMessage() (wire.Message, error)
	WriteMessage(msg wire.Message) error
	Close() error
}

// Config describes the local side of a session.
type Config struct {
	Local     netip.AddrPort
	UserAgent string

	// AddressCap stops the session once this many distinct addresses
	// have been collected. It is checked after every message received
	// once getaddr has been sent, so a zero cap ends the session right
	// after the handshake.
	AddressCap int
}

// Session runs the version handshake with one peer, asks it for addresses
// and collects the IPv4 addresses it returns.
type Session struct {
	cfg    *Config
	remote netip.AddrPort
	stream MessageStream

	state        HandshakeState
	addrs        set.Interface
	decodeErrors int
}

func NewSession(stream MessageStream, remote netip.AddrPort, cfg *Config) *Session {
	return &Session{
		cfg:    cfg,
		remote: remote,
		stream: stream,
		state:  AwaitingVersion,
		addrs:  set.New(set.NonThreadSafe),
	}
}

// Run drives the session to completion and closes the stream. Whatever was
// collected is returned, also when the peer went away early; only a failure
// to send produces an error.
func (s *Session) Run() ([]netip.AddrPort, error) {
	defer func() {
		s.state = Done
		s.stream.Close()
	}()

	version := NewVersionMessage(s.remote, s.cfg.Local, s.cfg.UserAgent)
	log.Print("peer", "debug", "%v", log.InitLogClosure(func() string {
		return fmt.Sprintf("sending version to %s: %s", s.remote, spew.Sdump(version))
	}))
	if err := s.stream.WriteMessage(version); err != nil {
		return s.result(), s.sendError(version, err)
	}

	for s.state != Done {
		msg, err := s.stream.ReadMessage()
		if err != nil {
			if errcode.IsErrorCode(err, errcode.DecodeError) {
				s.decodeErrors++
				if s.decodeErrors >= MaxConsecutiveDecodeErrors {
					log.Print("peer", "debug", "giving up on %s after %d undecodable frames",
						s.remote, s.decodeErrors)
					s.state = Done
				}
				continue
			}
			log.Print("peer", "debug", "stream from %s ended in state %v: %v", s.remote, s.state, err)
			break
		}
		s.decodeErrors = 0

		if err := s.handleMessage(msg); err != nil {
			return s.result(), err
		}
	}

	log.Print("peer", "debug", "session with %s done, %d addresses", s.remote, s.addrs.Size())
	return s.result(), nil
}

func (s *Session) handleMessage(msg wire.Message) error {
	step := Transition(s.state, msg)
	if step.Next != s.state {
		log.Print("peer", "debug", "%s: %v -> %v on %s", s.remote, s.state, step.Next, msg.Command())
	}

	for _, out := range step.Send {
		if err := s.stream.WriteMessage(out); err != nil {
			return s.sendError(out, err)
		}
	}
	s.state = step.Next

	for _, addr := range step.Addresses {
		s.addrs.Add(addr)
	}

	if s.state >= AwaitingGetAddrSent && s.addrs.Size() >= s.cfg.AddressCap {
		s.state = Done
	}
	return nil
}

func (s *Session) sendError(msg wire.Message, err error) error {
	if !errcode.IsErrorCode(err, errcode.SendingFailed) {
		err = errcode.NewWithCause(errcode.SendingFailed, err)
	}
	return errors.Wrapf(err, "send %s to %s", msg.Command(), s.remote)
}

// State returns the current handshake state.
func (s *Session) State() HandshakeState {
	return s.state
}

// result returns the collected addresses in ascending order.
func (s *Session) result() []netip.AddrPort {
	addrs := make([]netip.AddrPort, 0, s.addrs.Size())
	s.addrs.Each(func(item interface{}) bool {
		addrs = append(addrs, item.(netip.AddrPort))
		return true
	})
	sort.Slice(addrs, func(i, j int) bool {
		// Equivalent to netip.AddrPort.Compare (Go 1.22+).
		if c := addrs[i].Addr().Compare(addrs[j].Addr()); c != 0 {
			return c < 0
		}
		return addrs[i].Port() < addrs[j].Port()
	})
	return addrs
}
