// pcapgen writes a capture of UDP datagrams carrying signed transactions,
// suitable for txbridge replay mode.
package main

import (
	"flag"
	"log"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"txbridge/internal/codec"
	"txbridge/internal/core/model"
	"txbridge/internal/fixtures"
)

func main() {
	outputFile := flag.String("o", "test.pcap", "Output pcap file path")
	packetCount := flag.Int("c", 100, "Number of transactions to generate")
	noise := flag.Int("noise", 10, "Percentage of datagrams carrying random bytes instead of a transaction")
	flag.Parse()

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	pcapWriter := pcapgo.NewWriter(f)
	if err := pcapWriter.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		log.Fatalf("Failed to write pcap header: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.Printf("Generating %d transactions into %s...", *packetCount, *outputFile)

	for i := 0; i < *packetCount; i++ {
		payload := transactionPayload(byte(i))
		if rng.Intn(100) < *noise {
			payload = make([]byte, rng.Intn(model.PacketDataSize)+1)
			rng.Read(payload)
		}

		srcIP := net.IP{10, byte(rng.Intn(256)), byte(rng.Intn(256)), byte(rng.Intn(254) + 1)}
		ethLayer := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
			DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ipLayer := &layers.IPv4{
			SrcIP:    srcIP,
			DstIP:    net.IP{10, 0, 0, 1},
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolUDP,
		}
		udpLayer := &layers.UDP{
			SrcPort: layers.UDPPort(rng.Intn(65535-1024) + 1024),
			DstPort: 8003,
		}
		if err := udpLayer.SetNetworkLayerForChecksum(ipLayer); err != nil {
			log.Fatalf("Failed to set checksum layer: %v", err)
		}

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{
			ComputeChecksums: true,
			FixLengths:       true,
		}
		if err := gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, udpLayer, gopacket.Payload(payload)); err != nil {
			log.Fatalf("Failed to serialize layers: %v", err)
		}

		ci := gopacket.CaptureInfo{
			Timestamp:     time.Now(),
			CaptureLength: len(buf.Bytes()),
			Length:        len(buf.Bytes()),
		}
		if err := pcapWriter.WritePacket(ci, buf.Bytes()); err != nil {
			log.Fatalf("Failed to write packet: %v", err)
		}
	}

	log.Printf("Successfully generated %d datagrams into %s.", *packetCount, *outputFile)
}

// transactionPayload alternates legacy and v0 transactions.
func transactionPayload(seed byte) []byte {
	tx := fixtures.LegacyTransaction(seed)
	if seed%2 == 1 {
		tx, _ = fixtures.V0Transaction(seed)
	}
	data, err := codec.EncodeTransaction(&tx)
	if err != nil {
		log.Fatalf("Failed to encode transaction: %v", err)
	}
	return data
}
