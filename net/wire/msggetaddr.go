// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgGetAddr asks a peer for known active peers. It has no payload.
type MsgGetAddr struct{}

func (msg *MsgGetAddr) Decode(r io.Reader, pver uint32) error {
	return nil
}

func (msg *MsgGetAddr) Encode(w io.Writer, pver uint32) error {
	return nil
}

func (msg *MsgGetAddr) Command() string {
	return CmdGetAddr
}

func (msg *MsgGetAddr) MaxPayloadLength(pver uint32) uint32 {
	return 0
}

func NewMsgGetAddr() *MsgGetAddr {
	return &MsgGetAddr{}
}
