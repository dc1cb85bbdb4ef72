// The sniffer command captures trivium game traffic on a local interface and
// prints each protocol message with its direction. Since the protocol is
// newline-delimited JSON there is no decryption involved; this is mostly
// useful for debugging misbehaving clients without instrumenting the server.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

var (
	device = flag.String("d", "en0", "Device on which to listen for packets")
	port   = flag.Int("p", 5055, "Port on which the game server is listening")
)

func main() {
	flag.Parse()

	if getDeviceIP() == "" {
		exit("invalid device: %s", *device)
	}

	handle, err := pcap.OpenLive(*device, math.MaxInt32, false, pcap.BlockForever)
	if err != nil {
		exit("error opening handle: %v", err)
	}
	if err := handle.SetBPFFilter(fmt.Sprintf("tcp and port %d", *port)); err != nil {
		exit("error setting filter: %v", err)
	}

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	for packet := range packetSource.Packets() {
		appLayer := packet.ApplicationLayer()
		if appLayer == nil {
			continue
		}

		flow := packet.TransportLayer().TransportFlow()
		dstPort := binary.BigEndian.Uint16(flow.Dst().Raw())

		direction := "server -> client"
		if int(dstPort) == *port {
			direction = "client -> server"
		}

		// One TCP segment can carry several newline-terminated messages.
		for _, line := range strings.Split(string(appLayer.Payload()), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			fmt.Printf("[%s] %s\n", direction, line)
		}
	}
}

func exit(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
	os.Exit(1)
}

func getDeviceIP() string {
	devs, _ := pcap.FindAllDevs()
	for _, dev := range devs {
		if dev.Name == *device {
			for _, address := range dev.Addresses {
				return address.IP.String()
			}
		}
	}
	return ""
}
