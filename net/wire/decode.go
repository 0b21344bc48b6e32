// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/copernet/peercrawler/errcode"
)

// Decode extracts every complete frame from buf. It returns the decoded
// messages in stream order, the trailing bytes of an incomplete frame, and
// one DecodeError per frame that had to be dropped or run of bytes that had
// to be skipped. A bad frame never stops decoding of the frames after it.
//
// The messages do not depend on how the stream was chunked: feeding the
// leftover plus the next chunk back into Decode yields the same messages as
// decoding the concatenation at once. A Decoder also keeps the errors
// independent of chunking.
func Decode(buf []byte, pver uint32, btcnet BitcoinNet) ([]Message, []byte, []error) {
	d := NewDecoder(pver, btcnet)
	d.buf = buf

	var msgs []Message
	var errs []error
	for {
		msg, err := d.Next()
		switch {
		case err != nil:
			errs = append(errs, err)
		case msg != nil:
			msgs = append(msgs, msg)
		default:
			return msgs, d.buf[d.off:], errs
		}
	}
}

// decodeNext consumes either one frame or one run of bytes that cannot start
// a frame from the front of buf. It returns the number of bytes consumed,
// which is zero when buf holds only the beginning of a frame, and whether
// the caller is left searching for the next magic.
func decodeNext(buf []byte, pver uint32, btcnet BitcoinNet) (Message, int, bool, error) {
	var magic [4]byte
	littleEndian.PutUint32(magic[:], uint32(btcnet))

	if !hasMagicPrefix(buf, magic) {
		skip := resyncOffset(buf, magic)
		str := fmt.Sprintf("expected network magic %v, skipped %d bytes", btcnet, skip)
		return nil, skip, true, decodeError("Decode", str)
	}

	if len(buf) < MessageHeaderSize {
		return nil, 0, false, nil
	}

	hdr, err := readMessageHeader(bytes.NewReader(buf[:MessageHeaderSize]))
	if err != nil {
		// Cannot happen with a full header in memory.
		return nil, 1, true, errcode.NewWithCause(errcode.DecodeError, err)
	}

	// A length this large can only come from a corrupt header, so the
	// frame boundary is unknown. Search for the next frame instead.
	if hdr.Length > MaxMessagePayload {
		str := fmt.Sprintf("message payload is too large - header indicates %d bytes, but max message payload is %d bytes.",
			hdr.Length, MaxMessagePayload)
		return nil, resyncOffset(buf, magic), true, decodeError("Decode", str)
	}

	frameLen := MessageHeaderSize + int(hdr.Length)
	if len(buf) < frameLen {
		return nil, 0, false, nil
	}

	msg, err := decodePayload(hdr, buf[MessageHeaderSize:frameLen], pver)
	return msg, frameLen, false, err
}

func decodePayload(hdr *MessageHeader, payload []byte, pver uint32) (Message, error) {
	sum := checksum(payload)
	if !bytes.Equal(sum[:], hdr.Checksum[:]) {
		str := fmt.Sprintf("payload checksum failed - header indicates %x, but actual checksum is %x.",
			hdr.Checksum, sum)
		return nil, decodeError("Decode", str)
	}

	// Check for malformed commands.
	command := hdr.Command
	if !utf8.ValidString(command) || bytes.IndexByte([]byte(command), 0) >= 0 {
		str := fmt.Sprintf("invalid command %v", []byte(command))
		return nil, decodeError("Decode", str)
	}

	msg := makeEmptyMessage(command)

	// Check for maximum length based on the message type as a malicious
	// client could otherwise create a well-formed header and set the
	// length to max numbers in order to exhaust the machine's memory.
	mpl := msg.MaxPayloadLength(pver)
	if hdr.Length > mpl {
		str := fmt.Sprintf("payload exceeds max length - header indicates %v bytes, but max payload size for messages of type [%v] is %v.",
			hdr.Length, command, mpl)
		return nil, decodeError("Decode", str)
	}

	err := msg.Decode(bytes.NewReader(payload), pver)
	if err != nil {
		return nil, errcode.NewWithCause(errcode.DecodeError,
			messageError("Decode", fmt.Sprintf("malformed %s payload: %v", command, err)))
	}
	return msg, nil
}

// hasMagicPrefix reports whether buf starts with magic, or with a prefix of
// it when fewer than four bytes are buffered.
func hasMagicPrefix(buf []byte, magic [4]byte) bool {
	n := len(buf)
	if n > len(magic) {
		n = len(magic)
	}
	return bytes.Equal(buf[:n], magic[:n])
}

// resyncOffset returns the offset of the first position after buf[0] that
// may start a frame: either a full magic or a magic prefix running to the
// end of buf. It returns len(buf) if there is none.
func resyncOffset(buf []byte, magic [4]byte) int {
	for i := 1; i < len(buf); i++ {
		if hasMagicPrefix(buf[i:], magic) {
			return i
		}
	}
	return len(buf)
}

func decodeError(f string, desc string) error {
	return errcode.NewWithCause(errcode.DecodeError, messageError(f, desc))
}

// Decoder buffers a byte stream and yields messages as frames complete.
// Bytes skipped between two frames are reported as one error, however
// they arrived.
type Decoder struct {
	pver   uint32
	btcnet BitcoinNet
	buf    []byte
	off    int

	// set while looking for the next magic after an error was reported
	skipping bool
}

func NewDecoder(pver uint32, btcnet BitcoinNet) *Decoder {
	return &Decoder{pver: pver, btcnet: btcnet}
}

// Append adds data to the end of the buffered stream.
func (d *Decoder) Append(data []byte) {
	if d.off > 0 {
		// Release consumed frames instead of growing the backing array.
		n := copy(d.buf, d.buf[d.off:])
		d.buf = d.buf[:n]
		d.off = 0
	}
	d.buf = append(d.buf, data...)
}

// Next returns the next message or decode error in stream order. It returns
// nil, nil when no complete frame is buffered.
func (d *Decoder) Next() (Message, error) {
	for d.off < len(d.buf) {
		start := d.buf[d.off:]
		msg, n, resync, err := decodeNext(start, d.pver, d.btcnet)
		if n == 0 {
			break
		}
		d.off += n

		// Junk after a reported error belongs to the same run.
		if d.skipping && !hasMagicPrefix(start, d.magic()) {
			continue
		}
		d.skipping = resync
		if err != nil || msg != nil {
			return msg, err
		}
	}
	return nil, nil
}

func (d *Decoder) magic() [4]byte {
	var magic [4]byte
	littleEndian.PutUint32(magic[:], uint32(d.btcnet))
	return magic
}

// Feed appends data to the stream and returns the messages and decode errors
// of every frame completed by it.
func (d *Decoder) Feed(data []byte) ([]Message, []error) {
	d.Append(data)

	var msgs []Message
	var errs []error
	for {
		msg, err := d.Next()
		switch {
		case err != nil:
			errs = append(errs, err)
		case msg != nil:
			msgs = append(msgs, msg)
		default:
			return msgs, errs
		}
	}
}

// Buffered returns the number of bytes of incomplete frames held.
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.off
}
