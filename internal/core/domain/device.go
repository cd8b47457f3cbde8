package domain

// DeviceID identifies a device in the registry.
type DeviceID string

// UserID identifies a website user.
type UserID string

// ConnectionID identifies a connection between two entities.
type ConnectionID string

// SessionID identifies a single push-channel session (one browser tab).
type SessionID string

// UnknownValue is the sentinel placeholder for an IP or MAC the discovery
// source could not resolve. Sentinel values never participate in dedup.
const UnknownValue = "unknown"

type DeviceType string

const (
	DeviceTypeComputer   DeviceType = "computer"
	DeviceTypeRouter     DeviceType = "router"
	DeviceTypeSmartphone DeviceType = "smartphone"
	DeviceTypeIoT        DeviceType = "iot"
	DeviceTypeGaming     DeviceType = "gaming"
	DeviceTypeOther      DeviceType = "other"
)

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// Device is a network device discovered by a scan or registered by a user
// session. Identity key is ID; cross-source dedup falls back to IP or MAC
// when those are present and not the "unknown" sentinel.
type Device struct {
	ID            DeviceID   `json:"id"`
	Name          string     `json:"name"`
	IP            string     `json:"ip"`
	MAC           string     `json:"mac"`
	Type          DeviceType `json:"type"`
	IsEthernet    bool       `json:"isEthernet"`
	Status        Status     `json:"status"`
	IsWebsiteUser bool       `json:"isWebsiteUser"`
}

// SessionDeviceID returns the id of the synthetic device that anchors a
// user's push-channel session in the device set.
func SessionDeviceID(userID UserID) DeviceID {
	return DeviceID("device-user-" + string(userID))
}
