package domain

import (
	"regexp"
	"strings"
)

// Classification heuristics for names and hostnames coming out of arp
// scans and browser registrations. Pure functions, no I/O.

var (
	numericNameRe    = regexp.MustCompile(`^\d+$`)
	ipShapeRe        = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
	placeholderRe    = regexp.MustCompile(`(?i)^(device-\d+|web user \d+|unknown.*|device|computer)$`)
	osNameRe         = regexp.MustCompile(`(?i)(iphone|android|windows|macbook|mac|ipad|linux|ubuntu|pixel|galaxy|samsung|xiaomi|huawei|oneplus|surface)`)
	mobileFragmentRe = regexp.MustCompile(`(?i)(iphone|android|pixel|galaxy|samsung|xiaomi|huawei|oneplus|ipad)`)
	iotFragmentRe    = regexp.MustCompile(`(?i)(esp|tuya|tasmota|shelly|camera|cam\b|thermostat|plug|bulb|sensor|nest|ring|echo|alexa|sonos|tv\b|chromecast)`)
	gamingFragmentRe = regexp.MustCompile(`(?i)(playstation|ps4|ps5|xbox|nintendo|switch|steam)`)
)

var userAgentFragments = []string{"Mozilla/", "AppleWebKit", "Chrome/", "Safari/", "Gecko/", "Windows NT"}

// IsGenericName reports whether a display name is a placeholder that a
// more specific name from another source may overwrite during merge.
func IsGenericName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 3 {
		return true
	}
	if numericNameRe.MatchString(trimmed) || ipShapeRe.MatchString(trimmed) {
		return true
	}
	if placeholderRe.MatchString(trimmed) {
		return true
	}
	for _, frag := range userAgentFragments {
		if strings.Contains(trimmed, frag) {
			return true
		}
	}
	return false
}

// BetterName picks between an existing name and a candidate: a specific
// name always wins over a generic one, regardless of which side is newer.
func BetterName(existing, candidate string) string {
	if candidate == "" {
		return existing
	}
	if existing == "" {
		return candidate
	}
	if IsGenericName(candidate) && !IsGenericName(existing) {
		return existing
	}
	return candidate
}

// ClassifyDevice guesses the device type from hostname, IP and MAC, in the
// same spirit as the arp parser: gateway-style addresses are routers,
// known mobile hostname fragments or common phone OUI prefixes are
// smartphones, then IoT and gaming fragments, falling back to computer for
// a named host and other for a placeholder.
func ClassifyDevice(name, ip, mac string) DeviceType {
	if strings.HasSuffix(ip, ".1") || ip == "192.168.1.1" || ip == "10.0.0.1" {
		return DeviceTypeRouter
	}
	lowerMAC := strings.ToLower(mac)
	if mobileFragmentRe.MatchString(name) || strings.HasPrefix(lowerMAC, "a8:") || strings.HasPrefix(lowerMAC, "ac:") {
		return DeviceTypeSmartphone
	}
	if iotFragmentRe.MatchString(name) {
		return DeviceTypeIoT
	}
	if gamingFragmentRe.MatchString(name) {
		return DeviceTypeGaming
	}
	if IsGenericName(name) {
		return DeviceTypeOther
	}
	return DeviceTypeComputer
}

// FriendlyName extracts a human-friendly OS or vendor token from a raw
// hostname when one is present ("divines-mbp-iPhone" -> "iPhone").
// Routers keep the full hostname since it is usually the SSID.
func FriendlyName(hostname string, deviceType DeviceType) string {
	if deviceType == DeviceTypeRouter {
		return hostname
	}
	if m := osNameRe.FindString(hostname); m != "" {
		return m
	}
	return hostname
}
