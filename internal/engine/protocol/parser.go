package protocol

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ErrNotUDP is returned for frames that do not carry a UDP datagram over IP.
var ErrNotUDP = errors.New("not a UDP/IP packet")

// Datagram is the part of a captured frame the packet mapper needs.
type Datagram struct {
	SrcAddr netip.Addr
	SrcPort uint16
	Payload []byte
}

// ParseDatagram uses gopacket to decode a captured frame of the given link
// type and extract the source endpoint and UDP payload.
func ParseDatagram(frame []byte, linkType layers.LinkType) (*Datagram, error) {
	packet := gopacket.NewPacket(frame, linkType, gopacket.Default)
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, fmt.Errorf("decode frame: %w", errLayer.Error())
	}

	var d Datagram
	if l := packet.Layer(layers.LayerTypeIPv4); l != nil {
		ip := l.(*layers.IPv4)
		addr, ok := netip.AddrFromSlice(ip.SrcIP.To4())
		if !ok {
			return nil, fmt.Errorf("bad IPv4 source %v", ip.SrcIP)
		}
		d.SrcAddr = addr
	} else if l := packet.Layer(layers.LayerTypeIPv6); l != nil {
		ip := l.(*layers.IPv6)
		addr, ok := netip.AddrFromSlice(ip.SrcIP.To16())
		if !ok {
			return nil, fmt.Errorf("bad IPv6 source %v", ip.SrcIP)
		}
		d.SrcAddr = addr
	} else {
		return nil, ErrNotUDP
	}

	l := packet.Layer(layers.LayerTypeUDP)
	if l == nil {
		return nil, ErrNotUDP
	}
	udp := l.(*layers.UDP)
	d.SrcPort = uint16(udp.SrcPort)
	d.Payload = udp.Payload
	return &d, nil
}
