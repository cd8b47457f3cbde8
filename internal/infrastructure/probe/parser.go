package probe

import (
	"regexp"
	"strconv"
	"strings"

	"lanmesh/internal/core/domain"
)

// Parsers for the textual output of the OS tools the adapter shells out
// to. Each is tolerant: an unmatched field stays nil.

var (
	// speedtest-cli --simple:
	//   Ping: 12.345 ms
	//   Download: 123.45 Mbit/s
	//   Upload: 67.89 Mbit/s
	pingLineRe     = regexp.MustCompile(`Ping:\s*([\d.]+)\s*ms`)
	downloadLineRe = regexp.MustCompile(`Download:\s*([\d.]+)\s*Mbit/s`)
	uploadLineRe   = regexp.MustCompile(`Upload:\s*([\d.]+)\s*Mbit/s`)

	// ping summary: "10 packets transmitted, 10 received, 0% packet loss"
	packetLossRe = regexp.MustCompile(`([\d.]+)% packet loss`)

	// arp -a: "hostname (192.168.1.173) at a4:83:e7:68:e2:30 on en0 ifscope [ethernet]"
	arpEntryRe = regexp.MustCompile(`(?i)^([\w\-\.]+) \(([0-9.]+)\) at ([0-9a-f:]+)`)
)

func matchFloat(re *regexp.Regexp, output string) *float64 {
	m := re.FindStringSubmatch(output)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseSpeedtest extracts latency, download and upload from the simple
// speedtest output.
func ParseSpeedtest(output string) (latency, download, upload *float64) {
	return matchFloat(pingLineRe, output),
		matchFloat(downloadLineRe, output),
		matchFloat(uploadLineRe, output)
}

// ParsePacketLoss extracts the loss percentage from a ping summary.
func ParsePacketLoss(output string) *float64 {
	return matchFloat(packetLossRe, output)
}

// ParseArp turns arp -a output into device candidates. Entries without a
// resolved MAC ("<incomplete>") are skipped; duplicate IPs within one
// scan keep the first entry.
func ParseArp(output string) []domain.Device {
	var devices []domain.Device
	seen := make(map[string]bool)

	for _, line := range strings.Split(output, "\n") {
		m := arpEntryRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		hostname, ip, mac := m[1], m[2], strings.ToLower(m[3])
		if seen[ip] {
			continue
		}
		seen[ip] = true

		deviceType := domain.ClassifyDevice(hostname, ip, mac)
		devices = append(devices, domain.Device{
			Name:       domain.FriendlyName(hostname, deviceType),
			IP:         ip,
			MAC:        mac,
			Type:       deviceType,
			IsEthernet: strings.Contains(line, "[ethernet]"),
			Status:     domain.StatusOnline,
		})
	}
	return devices
}
