package errcode

import (
	"fmt"
)

type NetErr int

const (
	ConnectionFailed NetErr = NetErrorBase + iota
	ConnectionTimedOut
	ConnectionLost
	SendingFailed
)

var netErrString = map[NetErr]string{
	ConnectionFailed:   "Connection failed",
	ConnectionTimedOut: "Connection timed out",
	ConnectionLost:     "Connection lost",
	SendingFailed:      "Sending failed",
}

func (ne NetErr) String() string {
	if s, ok := netErrString[ne]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", ne)
}

type MessageErr int

const (
	DecodeError MessageErr = MessageErrorBase + iota
	EncodeError
)

var messageErrString = map[MessageErr]string{
	DecodeError: "Malformed or corrupt frame",
	EncodeError: "Message cannot be encoded",
}

func (me MessageErr) String() string {
	if s, ok := messageErrString[me]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", me)
}

type ConfigErr int

const (
	InvalidAddress ConfigErr = ConfigErrorBase + iota
	InvalidOption
)

var configErrString = map[ConfigErr]string{
	InvalidAddress: "Invalid address format",
	InvalidOption:  "Invalid option value",
}

func (ce ConfigErr) String() string {
	if s, ok := configErrString[ce]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", ce)
}
