// Package admission decides whether a proposed connection between two
// entities is allowed, given the existing connections and network-locality
// facts. Evaluation is pure: it reads a registry view and returns either
// nil or a DeniedError with a client-visible reason.
package admission

import (
	"strings"

	"lanmesh/internal/core/domain"
)

// View is the point-in-time registry state admission evaluates against.
type View struct {
	Devices     []domain.Device
	Users       []domain.User
	Connections []domain.Connection
}

// DeniedError carries the structured denial reason surfaced to the caller.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string { return e.Reason }

func deny(reason string) error { return &DeniedError{Reason: reason} }

// IsDenied reports whether err is an admission denial.
func IsDenied(err error) bool {
	_, ok := err.(*DeniedError)
	return ok
}

// CanConnect evaluates the admission rules in order: the P2P exclusivity
// rule, the LAN locality rule, the WAN same-pair rule, then the generic
// duplicate check for P2P and LAN.
func CanConnect(sourceID, targetID string, connType domain.ConnectionType, view View) error {
	switch connType {
	case domain.ConnectionP2P:
		// P2P is strictly 1-to-1 globally per participant.
		for _, conn := range view.Connections {
			if conn.Type == domain.ConnectionP2P && (conn.Involves(sourceID) || conn.Involves(targetID)) {
				return deny("P2P connections are limited to 2 users only")
			}
		}

	case domain.ConnectionLAN:
		if err := checkLocality(sourceID, targetID, view); err != nil {
			return err
		}

	case domain.ConnectionWAN:
		for _, conn := range view.Connections {
			if conn.Type == domain.ConnectionWAN && conn.Links(sourceID, targetID) {
				return deny("WAN connection already exists between these entities")
			}
		}
		// WAN carries no locality restriction and tolerates connections of
		// other types between the same pair.
		return nil

	default:
		return deny("unknown connection type: " + string(connType))
	}

	// Duplicate check for P2P and LAN: any existing connection between the
	// unordered pair, of any type, blocks a new one.
	for _, conn := range view.Connections {
		if conn.Links(sourceID, targetID) {
			return deny("connection already exists between these entities")
		}
	}

	return nil
}

// checkLocality applies the LAN compatibility predicate: both endpoints'
// associated devices share a /24-equivalent subnet prefix, or both are
// wired.
func checkLocality(sourceID, targetID string, view View) error {
	sourceDev, sourceOK := resolveDevice(sourceID, view)
	targetDev, targetOK := resolveDevice(targetID, view)
	if !sourceOK || !targetOK {
		return deny("cannot determine network information")
	}

	if sourceDev.IsEthernet && targetDev.IsEthernet {
		return nil
	}

	sourcePrefix, sourceOK := subnetPrefix(sourceDev.IP)
	targetPrefix, targetOK := subnetPrefix(targetDev.IP)
	if !sourceOK || !targetOK {
		return deny("cannot determine network information")
	}

	if sourcePrefix != targetPrefix {
		return deny("LAN connections are only allowed between entities on the same network")
	}
	return nil
}

// resolveDevice maps an endpoint entity to its associated device record:
// the device with the same id, the user's synthetic session device, or a
// device sharing the user's client IP.
func resolveDevice(entityID string, view View) (domain.Device, bool) {
	for _, dev := range view.Devices {
		if string(dev.ID) == entityID {
			return dev, true
		}
	}

	for _, user := range view.Users {
		if string(user.ID) != entityID {
			continue
		}
		sessionDevID := domain.SessionDeviceID(user.ID)
		for _, dev := range view.Devices {
			if dev.ID == sessionDevID {
				return dev, true
			}
		}
		if user.ClientIP != "" && user.ClientIP != domain.UnknownValue {
			for _, dev := range view.Devices {
				if dev.IP == user.ClientIP {
					return dev, true
				}
			}
			// No device record, but the client IP itself is enough for
			// the subnet comparison.
			return domain.Device{ID: domain.SessionDeviceID(user.ID), IP: user.ClientIP}, true
		}
		return domain.Device{}, false
	}

	return domain.Device{}, false
}

// subnetPrefix derives the /24-equivalent prefix by taking the first three
// dot-separated components of the IP.
func subnetPrefix(ip string) (string, bool) {
	if ip == "" || ip == domain.UnknownValue {
		return "", false
	}
	parts := strings.Split(ip, ".")
	if len(parts) < 4 {
		return "", false
	}
	return strings.Join(parts[:3], "."), true
}
