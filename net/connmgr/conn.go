package connmgr

import (
	"bytes"
	"fmt"
	"net"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/copernet/peercrawler/errcode"
	"github.com/copernet/peercrawler/log"
	"github.com/copernet/peercrawler/net/wire"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

const readBufferSize = 64 << 10

// Conn is a framed message stream over one TCP connection. ReadMessage and
// WriteMessage may be used from different goroutines, but neither from more
// than one at a time.
type Conn struct {
	conn        net.Conn
	addr        netip.AddrPort
	btcnet      wire.BitcoinNet
	idleTimeout time.Duration

	decoder *wire.Decoder
	readBuf []byte
	readErr error

	bytesReceived uint64
	bytesSent     uint64
}

func newConn(conn net.Conn, addr netip.AddrPort, cfg *Config) *Conn {
	return &Conn{
		conn:        conn,
		addr:        addr,
		btcnet:      cfg.ChainNet,
		idleTimeout: cfg.IdleTimeout,
		decoder:     wire.NewDecoder(wire.ProtocolVersion, cfg.ChainNet),
		readBuf:     make([]byte, readBufferSize),
	}
}

// ReadMessage blocks until the next message arrives. A frame that could
// not be decoded is reported as a DecodeError and the stream stays usable;
// ConnectionLost means the stream has ended.
func (c *Conn) ReadMessage() (wire.Message, error) {
	for {
		msg, err := c.decoder.Next()
		if err != nil {
			log.Print("connmgr", "debug", "dropped frame from %s: %v", c.addr, err)
			return nil, err
		}
		if msg != nil {
			log.Print("connmgr", "debug", "%v", log.InitLogClosure(func() string {
				return fmt.Sprintf("received %v from %s", msg.Command(), c.addr)
			}))
			return msg, nil
		}

		if c.readErr != nil {
			return nil, errcode.NewWithCause(errcode.ConnectionLost, c.readErr)
		}

		if c.idleTimeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
		}
		n, err := c.conn.Read(c.readBuf)
		if n > 0 {
			atomic.AddUint64(&c.bytesReceived, uint64(n))
			c.decoder.Append(c.readBuf[:n])
		}
		if err != nil {
			c.readErr = errors.Wrapf(err, "read from %s", c.addr)
		}
	}
}

// WriteMessage sends msg as a single frame.
func (c *Conn) WriteMessage(msg wire.Message) error {
	log.Print("connmgr", "debug", "%v", log.InitLogClosure(func() string {
		return fmt.Sprintf("sending %v to %s", msg.Command(), c.addr)
	}))
	log.Print("connmgr", "debug", "%v", log.InitLogClosure(func() string {
		var buf bytes.Buffer
		_, err := wire.WriteMessage(&buf, msg, wire.ProtocolVersion, c.btcnet)
		if err != nil {
			return err.Error()
		}
		return spew.Sdump(buf.Bytes())
	}))

	if c.idleTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.idleTimeout))
	}
	n, err := wire.WriteMessage(c.conn, msg, wire.ProtocolVersion, c.btcnet)
	atomic.AddUint64(&c.bytesSent, uint64(n))
	if err != nil {
		return errcode.NewWithCause(errcode.SendingFailed, errors.Wrapf(err, "send %s to %s", msg.Command(), c.addr))
	}
	return nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) RemoteAddr() netip.AddrPort {
	return c.addr
}

func (c *Conn) BytesReceived() uint64 {
	return atomic.LoadUint64(&c.bytesReceived)
}

func (c *Conn) BytesSent() uint64 {
	return atomic.LoadUint64(&c.bytesSent)
}

func (c *Conn) String() string {
	return c.addr.String()
}
