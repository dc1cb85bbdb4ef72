package question

import (
	"fmt"
	"strconv"
	"strings"
)

// cidr returns a random address/prefix pair like "192.168.0.1/24". Prefixes
// cover the full 0-32 range so the /31 and /32 edge cases come up.
func (g *Generator) cidr() string {
	return fmt.Sprintf("%d.%d.%d.%d/%d",
		g.rng.Intn(256), g.rng.Intn(256), g.rng.Intn(256), g.rng.Intn(256),
		g.rng.Intn(33))
}

func parseCIDR(short string) (addr uint32, prefix int, err error) {
	parts := strings.Split(strings.TrimSpace(short), "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed CIDR %q", short)
	}

	prefix, err = strconv.Atoi(parts[1])
	if err != nil || prefix < 0 || prefix > 32 {
		return 0, 0, fmt.Errorf("malformed prefix in %q", short)
	}

	octets := strings.Split(parts[0], ".")
	if len(octets) != 4 {
		return 0, 0, fmt.Errorf("malformed address in %q", short)
	}
	for _, o := range octets {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 || n > 255 {
			return 0, 0, fmt.Errorf("malformed octet in %q", short)
		}
		addr = addr<<8 | uint32(n)
	}
	return addr, prefix, nil
}

// usableHosts returns the number of usable host addresses in a subnet with
// the given prefix length. /31 and /32 have none.
func usableHosts(prefix int) string {
	if prefix >= 31 {
		return "0"
	}
	return strconv.FormatUint(uint64(1)<<(32-prefix)-2, 10)
}

// networkAndBroadcast answers "network and broadcast" for a CIDR.
func networkAndBroadcast(short string) (string, error) {
	addr, prefix, err := parseCIDR(short)
	if err != nil {
		return "", err
	}

	// Shift counts of 0 and 32 both behave: /0 masks nothing, /32 everything.
	mask := ^(uint32(0xFFFFFFFF) >> prefix)

	network := addr & mask
	broadcast := network | ^mask
	return fmt.Sprintf("%s and %s", formatIP(network), formatIP(broadcast)), nil
}

func formatIP(n uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", n>>24&255, n>>16&255, n>>8&255, n&255)
}
