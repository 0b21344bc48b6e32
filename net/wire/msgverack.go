// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgVerAck acknowledges a version message. It has no payload.
type MsgVerAck struct{}

func (msg *MsgVerAck) Decode(r io.Reader, pver uint32) error {
	return nil
}

func (msg *MsgVerAck) Encode(w io.Writer, pver uint32) error {
	return nil
}

func (msg *MsgVerAck) Command() string {
	return CmdVerAck
}

func (msg *MsgVerAck) MaxPayloadLength(pver uint32) uint32 {
	return 0
}

func NewMsgVerAck() *MsgVerAck {
	return &MsgVerAck{}
}
