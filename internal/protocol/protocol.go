package protocol

import "encoding/json"

const Version = "0.9"

// SupportedVersions lists every protocol version this client can speak, in order of preference.
var SupportedVersions = []string{Version, "1.0"}

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeCatalog = "CATALOG"
	TypeObs     = "OBS"
	TypeAct     = "ACT"
	TypeAck     = "ACK"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// IsSupportedVersion accepts an empty version (older servers omit it).
func IsSupportedVersion(v string) bool {
	if v == "" {
		return true
	}
	for _, s := range SupportedVersions {
		if s == v {
			return true
		}
	}
	return false
}
