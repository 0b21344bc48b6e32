// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// ProtocolVersion is the protocol version advertised in our version
	// message.
	ProtocolVersion uint32 = 70001

	// MultipleAddressVersion is the protocol version which added multiple
	// addresses per message (pver >= MultipleAddressVersion).
	MultipleAddressVersion uint32 = 209

	// NetAddressTimeVersion is the protocol version which added the
	// timestamp field (pver >= NetAddressTimeVersion).
	NetAddressTimeVersion uint32 = 31402

	// BIP0037Version is the protocol version which added the relay flag to
	// the version message.
	BIP0037Version uint32 = 70001
)

// BitcoinNet represents which bitcoin network a message belongs to. It is
// the 4-byte magic at the start of every frame.
type BitcoinNet uint32

const (
	MainNet  BitcoinNet = 0xd9b4bef9
	TestNet3 BitcoinNet = 0x0709110b
	RegTest  BitcoinNet = 0xdab5bffa
	SigNet   BitcoinNet = 0x40cf030a
)

type netParams struct {
	name        string
	defaultPort uint16
}

var bnStrings = map[BitcoinNet]netParams{
	MainNet:  {"mainnet", 8333},
	TestNet3: {"testnet3", 18333},
	RegTest:  {"regtest", 18444},
	SigNet:   {"signet", 38333},
}

func (n BitcoinNet) String() string {
	if p, ok := bnStrings[n]; ok {
		return p.name
	}
	return fmt.Sprintf("Unknown BitcoinNet (%d)", uint32(n))
}

// DefaultPort returns the default p2p port of the network, or 0 for an
// unknown network.
func (n BitcoinNet) DefaultPort() uint16 {
	return bnStrings[n].defaultPort
}

// ParseBitcoinNet maps a network name such as "mainnet" or "testnet3" to its
// magic.
func ParseBitcoinNet(name string) (BitcoinNet, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "main", "bitcoin":
		return MainNet, nil
	case "testnet", "test":
		return TestNet3, nil
	}
	for n, p := range bnStrings {
		if p.name == name {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown bitcoin network %q", name)
}

// ServiceFlag identifies services supported by a bitcoin peer.
type ServiceFlag uint64

const (
	SFNodeNetwork ServiceFlag = 1 << iota
	SFNodeGetUTXO
	SFNodeBloom
	SFNodeWitness
	SFNodeXthin
	SFNodeNetworkLimited ServiceFlag = 1 << 10
)

var orderedSFStrings = []ServiceFlag{
	SFNodeNetwork,
	SFNodeGetUTXO,
	SFNodeBloom,
	SFNodeWitness,
	SFNodeXthin,
	SFNodeNetworkLimited,
}

var sfStrings = map[ServiceFlag]string{
	SFNodeNetwork:        "SFNodeNetwork",
	SFNodeGetUTXO:        "SFNodeGetUTXO",
	SFNodeBloom:          "SFNodeBloom",
	SFNodeWitness:        "SFNodeWitness",
	SFNodeXthin:          "SFNodeXthin",
	SFNodeNetworkLimited: "SFNodeNetworkLimited",
}

func (f ServiceFlag) String() string {
	if f == 0 {
		return "0x0"
	}

	s := ""
	for _, flag := range orderedSFStrings {
		if f&flag == flag {
			s += sfStrings[flag] + "|"
			f -= flag
		}
	}

	s = strings.TrimRight(s, "|")
	if f != 0 {
		s += "|0x" + strconv.FormatUint(uint64(f), 16)
	}
	s = strings.TrimLeft(s, "|")
	return s
}
