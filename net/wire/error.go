// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

// MessageError describes an issue with a message: a malformed frame, a bad
// checksum, or a payload that does not parse. Decode reports these without
// giving up on the rest of the stream.
type MessageError struct {
	Func        string // Function name
	Description string // Human readable description of the issue
}

func (e *MessageError) Error() string {
	if e.Func != "" {
		return e.Func + ": " + e.Description
	}
	return e.Description
}

func messageError(f string, desc string) *MessageError {
	return &MessageError{Func: f, Description: desc}
}
