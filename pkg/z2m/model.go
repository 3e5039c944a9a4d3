// Package z2m models the zigbee2mqtt gateway JSON surface the bridge
// consumes: the retained device list on <base>/bridge/devices and the
// coordinator info on <base>/bridge/info.
package z2m

type DeviceInfo struct {
	IEEEAddress        string     `json:"ieee_address"`
	FriendlyName       string     `json:"friendly_name"`
	Type               string     `json:"type"`
	Supported          bool       `json:"supported"`
	Disabled           bool       `json:"disabled"`
	InterviewCompleted bool       `json:"interview_completed"`
	Manufacturer       string     `json:"manufacturer"`
	ModelID            string     `json:"model_id"`
	SoftwareBuildID    string     `json:"software_build_id"`
	Definition         Definition `json:"definition"`
}

type Definition struct {
	Description string   `json:"description"`
	Model       string   `json:"model"`
	Vendor      string   `json:"vendor"`
	Exposes     []Expose `json:"exposes"`
}

type Expose struct {
	Type        string   `json:"type"`
	Name        string   `json:"name,omitempty"`
	Property    string   `json:"property,omitempty"`
	Access      int      `json:"access,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	ValueOn     any      `json:"value_on,omitempty"`
	ValueOff    any      `json:"value_off,omitempty"`
	Features    []Expose `json:"features,omitempty"`
}

type BridgeInfo struct {
	Version     string      `json:"version"`
	Coordinator Coordinator `json:"coordinator"`
}

type Coordinator struct {
	IEEEAddress string `json:"ieee_address"`
	Type        string `json:"type"`
}

// Access bits per the zigbee2mqtt expose contract.
const (
	AccessState = 1
	AccessSet   = 2
	AccessGet   = 4
)

// IsCoordinator reports whether the device entry is the radio itself.
func (d DeviceInfo) IsCoordinator() bool {
	return d.Type == "Coordinator"
}
