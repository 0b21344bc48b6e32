// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
	"net"
	"net/netip"
	"time"
)

// NetAddress defines information about a peer on the network including the
// time it was last seen, the services it supports, its IP address, and port.
type NetAddress struct {
	// Last time the address was seen. Encoded as a uint32 on the wire and
	// only present in addr messages, never in the version message.
	Timestamp time.Time

	// Bitfield which identifies the services supported by the address.
	Services ServiceFlag

	// IP address of the peer, always 16 bytes on the wire.
	IP net.IP

	// Port the peer is using. Big endian on the wire, unlike everything
	// else.
	Port uint16
}

// NewNetAddressIPPort returns a NetAddress stamped with the current time.
func NewNetAddressIPPort(ip net.IP, port uint16, services ServiceFlag) *NetAddress {
	return NewNetAddressTimestamp(time.Now(), services, ip, port)
}

// NewNetAddressTimestamp returns a NetAddress with the timestamp truncated to
// seconds, the wire precision.
func NewNetAddressTimestamp(timestamp time.Time, services ServiceFlag, ip net.IP, port uint16) *NetAddress {
	return &NetAddress{
		Timestamp: time.Unix(timestamp.Unix(), 0),
		Services:  services,
		IP:        ip,
		Port:      port,
	}
}

// NewNetAddressAddrPort converts an endpoint into a NetAddress.
func NewNetAddressAddrPort(addr netip.AddrPort, services ServiceFlag) *NetAddress {
	ip := addr.Addr().AsSlice()
	return NewNetAddressIPPort(net.IP(ip), addr.Port(), services)
}

// IsIPv4 reports whether the address is IPv4, including IPv4-mapped IPv6.
func (na *NetAddress) IsIPv4() bool {
	return na.IP.To4() != nil
}

// AddrPort returns the endpoint with IPv4-mapped addresses unmapped. ok is
// false if the IP is not a valid 4 or 16 byte address.
func (na *NetAddress) AddrPort() (netip.AddrPort, bool) {
	addr, ok := netip.AddrFromSlice(na.IP)
	if !ok {
		return netip.AddrPort{}, false
	}
	return netip.AddrPortFrom(addr.Unmap(), na.Port), true
}

// IPv4AddrPort returns the endpoint only if it is an IPv4 one.
func (na *NetAddress) IPv4AddrPort() (netip.AddrPort, bool) {
	if !na.IsIPv4() {
		return netip.AddrPort{}, false
	}
	return na.AddrPort()
}

func (na *NetAddress) HasService(service ServiceFlag) bool {
	return na.Services&service == service
}

func (na *NetAddress) AddService(service ServiceFlag) {
	na.Services |= service
}

// maxNetAddressPayload returns the max payload size for a NetAddress based
// on the protocol version.
func maxNetAddressPayload(pver uint32) uint32 {
	// Services 8 bytes + ip 16 bytes + port 2 bytes.
	plen := uint32(26)

	if pver >= NetAddressTimeVersion {
		// Timestamp 4 bytes.
		plen += 4
	}

	return plen
}

// readNetAddress reads an encoded NetAddress from r. ts selects whether the
// timestamp is present, which is not the case inside version messages.
func readNetAddress(r io.Reader, pver uint32, na *NetAddress, ts bool) error {
	var ip [16]byte

	if ts && pver >= NetAddressTimeVersion {
		err := readElement(r, (*uint32Time)(&na.Timestamp))
		if err != nil {
			return err
		}
	}

	err := readElements(r, &na.Services, &ip)
	if err != nil {
		return err
	}

	var port [2]byte
	if _, err := io.ReadFull(r, port[:]); err != nil {
		return err
	}

	na.IP = net.IP(ip[:])
	na.Port = binary.BigEndian.Uint16(port[:])
	return nil
}

func writeNetAddress(w io.Writer, pver uint32, na *NetAddress, ts bool) error {
	if ts && pver >= NetAddressTimeVersion {
		err := writeElement(w, uint32(na.Timestamp.Unix()))
		if err != nil {
			return err
		}
	}

	var ip [16]byte
	if na.IP != nil {
		copy(ip[:], na.IP.To16())
	}
	err := writeElements(w, na.Services, ip)
	if err != nil {
		return err
	}

	var port [2]byte
	binary.BigEndian.PutUint16(port[:], na.Port)
	_, err = w.Write(port[:])
	return err
}
