// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/fastsha256"
	"github.com/copernet/peercrawler/errcode"
)

const (
	// MessageHeaderSize is the number of bytes in a bitcoin message header.
	// Bitcoin network (magic) 4 bytes + command 12 bytes + payload length 4
	// bytes + checksum 4 bytes.
	MessageHeaderSize = 24

	// CommandSize is the fixed size of all commands in the common bitcoin
	// message header. Shorter commands are zero padded.
	CommandSize = 12

	// MaxMessagePayload is the maximum bytes a message can be regardless of
	// other individual limits imposed by messages themselves.
	MaxMessagePayload = 4 * 1000 * 1000
)

// Commands used in bitcoin message headers which describe the type of
// message.
const (
	CmdVersion = "version"
	CmdVerAck  = "verack"
	CmdGetAddr = "getaddr"
	CmdAddr    = "addr"
)

// Message is an interface that describes a bitcoin message. A type that
// implements Message has complete control over the representation of its
// data and may therefore contain additional or fewer fields than those
// which are used directly in the protocol encoded message.
type Message interface {
	Decode(r io.Reader, pver uint32) error
	Encode(w io.Writer, pver uint32) error
	Command() string
	MaxPayloadLength(pver uint32) uint32
}

// MessageHeader defines the header structure for all bitcoin protocol
// messages.
type MessageHeader struct {
	Net      BitcoinNet // 4 bytes
	Command  string     // 12 bytes
	Length   uint32     // 4 bytes
	Checksum [4]byte    // 4 bytes
}

// makeEmptyMessage creates a message of the appropriate concrete type based
// on the command. Commands this package does not model become MsgUnknown.
func makeEmptyMessage(command string) Message {
	switch command {
	case CmdVersion:
		return &MsgVersion{}
	case CmdVerAck:
		return &MsgVerAck{}
	case CmdGetAddr:
		return &MsgGetAddr{}
	case CmdAddr:
		return &MsgAddr{}
	}
	return &MsgUnknown{Cmd: command}
}

// checksum returns the first four bytes of double-SHA256 of payload.
func checksum(payload []byte) [4]byte {
	first := fastsha256.Sum256(payload)
	second := fastsha256.Sum256(first[:])
	var sum [4]byte
	copy(sum[:], second[:4])
	return sum
}

func readMessageHeader(r io.Reader) (*MessageHeader, error) {
	hdr := MessageHeader{}
	var command [CommandSize]byte
	err := readElements(r, &hdr.Net, &command, &hdr.Length, &hdr.Checksum)
	if err != nil {
		return nil, err
	}

	// Strip trailing zeros from command string.
	hdr.Command = string(bytes.TrimRight(command[:], "\x00"))
	return &hdr, nil
}

// WriteMessage writes a bitcoin Message to w including the necessary header
// information and returns the number of bytes written.
func WriteMessage(w io.Writer, msg Message, pver uint32, btcnet BitcoinNet) (int, error) {
	totalBytes := 0

	// Enforce max command size.
	var command [CommandSize]byte
	cmd := msg.Command()
	if len(cmd) > CommandSize {
		str := fmt.Sprintf("command [%s] is too long [max %v]", cmd, CommandSize)
		return totalBytes, encodeError("WriteMessage", str)
	}
	copy(command[:], []byte(cmd))

	// Encode the message payload.
	var bw bytes.Buffer
	err := msg.Encode(&bw, pver)
	if err != nil {
		return totalBytes, errcode.NewWithCause(errcode.EncodeError,
			messageError("WriteMessage", fmt.Sprintf("encode %s: %v", cmd, err)))
	}
	payload := bw.Bytes()
	lenp := len(payload)

	// Enforce maximum overall message payload.
	if lenp > MaxMessagePayload {
		str := fmt.Sprintf("message payload is too large - encoded %d bytes, but maximum message payload is %d bytes",
			lenp, MaxMessagePayload)
		return totalBytes, encodeError("WriteMessage", str)
	}

	// Enforce maximum message payload based on the message type.
	mpl := msg.MaxPayloadLength(pver)
	if uint32(lenp) > mpl {
		str := fmt.Sprintf("message payload is too large - encoded %d bytes, but maximum message payload size for messages of type [%s] is %d.",
			lenp, cmd, mpl)
		return totalBytes, encodeError("WriteMessage", str)
	}

	hdr := MessageHeader{Net: btcnet, Command: cmd, Length: uint32(lenp), Checksum: checksum(payload)}

	// Encode the header for the message. This is done to a buffer rather
	// than directly to the writer since writeElements doesn't return the
	// number of bytes written.
	hw := bytes.NewBuffer(make([]byte, 0, MessageHeaderSize+lenp))
	writeElements(hw, hdr.Net, command, hdr.Length, hdr.Checksum)
	hw.Write(payload)

	// Header and payload go out in one write so a frame is never split by
	// an interleaved writer.
	n, err := w.Write(hw.Bytes())
	totalBytes += n
	return totalBytes, err
}

// EncodeMessage returns the complete frame for msg.
func EncodeMessage(msg Message, pver uint32, btcnet BitcoinNet) ([]byte, error) {
	var buf bytes.Buffer
	_, err := WriteMessage(&buf, msg, pver, btcnet)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeError(f string, desc string) error {
	return errcode.NewWithCause(errcode.EncodeError, messageError(f, desc))
}
