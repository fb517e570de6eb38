package pcap

import (
	"io"
	"os"

	"github.com/bitmark-inc/logger"
	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"

	"txbridge/internal/core/model"
	"txbridge/internal/engine/protocol"
)

// Reader replays UDP datagrams from a pcap file as native packets.
type Reader struct {
	file    io.Closer
	source  *pcapgo.Reader
	log     *logger.L
	skipped int
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{file: f, source: r, log: logger.New("pcap")}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() {
	r.file.Close()
}

// Skipped returns how many frames were not UDP datagrams.
func (r *Reader) Skipped() int {
	return r.skipped
}

// ReadPackets reads every UDP datagram from the pcap file and sends it to
// out as a packet with default metadata, the datagram's source endpoint and
// a size equal to the stored payload. Payloads longer than
// model.PacketDataSize are truncated. It closes the channel when done.
func (r *Reader) ReadPackets(out chan<- *model.Packet) {
	defer close(out)

	linkType := r.source.LinkType()
	packetSource := gopacket.NewPacketSource(r.source, linkType)
	for packet := range packetSource.Packets() {
		d, err := protocol.ParseDatagram(packet.Data(), linkType)
		if err != nil {
			r.skipped++
			r.log.Debugf("skipping frame: %s", err)
			continue
		}
		p := model.NewPacket()
		p.Meta.Size = model.CopyBounded(p.Buffer[:], d.Payload)
		p.Meta.Addr = d.SrcAddr
		p.Meta.Port = d.SrcPort
		out <- p
	}
}
