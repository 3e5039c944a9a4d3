package classify

import "strconv"

// Platform buckets nodes are sorted into.
const (
	PlatformBinarySensor = "binary_sensor"
	PlatformSensor       = "sensor"
	PlatformLock         = "lock"
	PlatformFan          = "fan"
	PlatformCover        = "cover"
	PlatformLight        = "light"
	PlatformSwitch       = "switch"
)

// SupportedPlatforms is the fixed evaluation priority for the generic
// matchers. Order matters: the first platform whose filter matches wins.
var SupportedPlatforms = []string{
	PlatformBinarySensor,
	PlatformSensor,
	PlatformLock,
	PlatformFan,
	PlatformCover,
	PlatformLight,
	PlatformSwitch,
}

// SupportedProgramPlatforms lists the platforms that can be backed by a
// status/actions program pair.
var SupportedProgramPlatforms = []string{
	PlatformBinarySensor,
	PlatformLock,
	PlatformFan,
	PlatformCover,
	PlatformSwitch,
}

// Hub scenes can turn off and report state, so they map to switch rather
// than a scene platform.
const GroupPlatform = PlatformSwitch

// Filter is one platform's accepted attribute values. The four members are
// independent matchers; see Nodes() for the order they apply in.
type Filter struct {
	// UOM tokens accepted by the uom-id matcher (set intersection).
	UOM []string
	// States accepted by the uom-as-states matcher (exact set equality).
	States []string
	// NodeDefID values accepted by the node-def matcher (5.x firmware).
	NodeDefID []string
	// InsteonType prefixes accepted by the legacy-type matcher. Prefix
	// match; keep the trailing dot.
	InsteonType []string
}

// NodeFilters matches raw controller API values, not Home Assistant state
// names.
var NodeFilters = map[string]Filter{
	PlatformBinarySensor: {
		UOM:    []string{},
		States: []string{},
		NodeDefID: []string{
			"BinaryAlarm",
			"BinaryAlarm_ADV",
			"BinaryControl",
			"BinaryControl_ADV",
			"EZIO2x4_Input",
			"EZRAIN_Input",
			"OnOffControl",
			"OnOffControl_ADV",
		},
		InsteonType: []string{"7.0.", "7.13.", "16."},
	},
	PlatformSensor: {
		// Most uom codes between 1 and 100, minus the ones that identify a
		// specific platform elsewhere in this table.
		UOM:         sensorUOMRange(),
		States:      []string{},
		NodeDefID:   []string{"IMETER_SOLO", "EZIO2x4_Input_ADV"},
		InsteonType: []string{"9.0.", "9.7."},
	},
	PlatformLock: {
		UOM:         []string{"11"},
		States:      []string{"locked", "unlocked"},
		NodeDefID:   []string{"DoorLock"},
		InsteonType: []string{"15.", "4.64."},
	},
	PlatformFan: {
		UOM:         []string{},
		States:      []string{"off", "low", "med", "high"},
		NodeDefID:   []string{"FanLincMotor"},
		InsteonType: []string{"1.46."},
	},
	PlatformCover: {
		UOM:         []string{"97"},
		States:      []string{"open", "closed", "closing", "opening", "stopped"},
		NodeDefID:   []string{},
		InsteonType: []string{},
	},
	PlatformLight: {
		UOM:    []string{"51"},
		States: []string{"on", "off", "%"},
		NodeDefID: []string{
			"BallastRelayLampSwitch",
			"BallastRelayLampSwitch_ADV",
			"DimmerLampOnly",
			"DimmerLampSwitch",
			"DimmerLampSwitch_ADV",
			"DimmerSwitchOnly",
			"DimmerSwitchOnly_ADV",
			"KeypadDimmer",
			"KeypadDimmer_ADV",
		},
		InsteonType: []string{"1."},
	},
	PlatformSwitch: {
		UOM:    []string{"2", "78"},
		States: []string{"on", "off"},
		NodeDefID: []string{
			"AlertModuleArmed",
			"AlertModuleSiren",
			"AlertModuleSiren_ADV",
			"EZIO2x4_Output",
			"EZRAIN_Output",
			"KeypadButton",
			"KeypadButton_ADV",
			"KeypadRelay",
			"KeypadRelay_ADV",
			"RelayLampOnly",
			"RelayLampOnly_ADV",
			"RelayLampSwitch",
			"RelayLampSwitch_ADV",
			"RelaySwitchOnlyPlusQuery",
			"RelaySwitchOnlyPlusQuery_ADV",
			"RemoteLinc2",
			"RemoteLinc2_ADV",
			"Siren",
			"Siren_ADV",
			"X10",
		},
		InsteonType: []string{"0.16.", "2.", "7.3.255.", "9.10.", "9.11.", "113."},
	},
}

// Restricted on/off filters used only by the sensor-override decision, where
// the node is already known to be some kind of sensor.
var (
	binarySensorUOMs   = []string{"2", "78"}
	binarySensorStates = []string{"on", "off"}
)

func sensorUOMRange() []string {
	var uoms []string
	add := func(from, to int) {
		for i := from; i < to; i++ {
			uoms = append(uoms, strconv.Itoa(i))
		}
	}
	uoms = append(uoms, "1")
	add(3, 11)
	add(12, 51)
	add(52, 66)
	add(69, 78)
	uoms = append(uoms, "79")
	add(82, 97)
	return uoms
}
