package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"hub2mqtt/pkg/isy"
	"hub2mqtt/pkg/z2m"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE = "bridge"

	SENSOR_TYPE_SENSOR = "sensor"
	SENSOR_TYPE_BINARY = "binary_sensor"

	ENTITY_CLASS_DIAGNOSTIC = "diagnostic"

	ICON_SCENE   = "mdi:google-circles-communities"
	ICON_PROGRAM = "mdi:script-text-outline"
)

// A handful of controller uom codes worth translating to HA units. Codes
// without an entry publish unitless sensors.
var uomFriendlyName = map[string]string{
	"1":  "A",
	"4":  "°C",
	"17": "°F",
	"22": "%RH",
	"25": "index",
	"30": "kW",
	"33": "kWh",
	"36": "lx",
	"51": "%",
	"54": "ppm",
	"72": "V",
	"73": "W",
	"90": "Hz",
}

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("hub2mqtt_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "hub2mqtt",
		Model:        "Hub bridge",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Hub2MQTT %s", md5HashShort(baseTopic)),
	}
}

func HubDevice(host string, bridge Device) Device {
	return Device{
		Id:           fmt.Sprintf("isy_hub_%s", md5HashShort(host)),
		Manufacturer: "Universal Devices, Inc",
		Model:        "ISY-994i",
		Name:         fmt.Sprintf("ISY %s", host),
		ViaDevice:    bridge.Id,
	}
}

func ZigbeeCoordinatorDevice(info z2m.BridgeInfo, bridge Device) Device {
	return Device{
		Id:           fmt.Sprintf("zigbee_coordinator_%s", md5HashShort(info.Coordinator.IEEEAddress)),
		Manufacturer: "zigbee2mqtt",
		Model:        info.Coordinator.Type,
		Version:      info.Version,
		Name:         "Zigbee Coordinator",
		ViaDevice:    bridge.Id,
	}
}

func ZigbeeDevice(info z2m.DeviceInfo, via Device) Device {
	return Device{
		Id:           fmt.Sprintf("zigbee_%s", EntityID(info.IEEEAddress)),
		Manufacturer: info.Definition.Vendor,
		Model:        info.Definition.Model,
		Version:      info.SoftwareBuildID,
		Name:         info.FriendlyName,
		ViaDevice:    via.Id,
	}
}

// IdDevice strips a device down to id+name for follow-up entities, so the
// full device block is only published once.
func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {
	return []GenericSensor{
		{
			Device:         bridgeDevice,
			Id:             SENSOR_ID_BRIDGE_STATE,
			SensorType:     SENSOR_TYPE_BINARY,
			Name:           "Bridge connected",
			DeviceClass:    "connectivity",
			EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
			UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
		},
	}
}

// Node entity builders. One per platform the classifier can emit.

func NodeSwitch(device Device, n *isy.Node) GenericSwitch {
	sw := GenericSwitch{
		Device:   device,
		Id:       EntityID(n.Address),
		Name:     n.Name,
		UniqueId: uniqueId(device.Id, EntityID(n.Address)),
	}
	if n.Protocol == isy.ProtoGroup {
		// Hub scenes can turn off and report state, so they surface as
		// switches with the scene icon.
		sw.Icon = ICON_SCENE
	}
	return sw
}

func NodeLight(device Device, n *isy.Node) GenericLight {
	return GenericLight{
		Device:     device,
		Id:         EntityID(n.Address),
		Name:       n.Name,
		UniqueId:   uniqueId(device.Id, EntityID(n.Address)),
		Brightness: true,
	}
}

func NodeFan(device Device, n *isy.Node) GenericFan {
	return GenericFan{
		Device:   device,
		Id:       EntityID(n.Address),
		Name:     n.Name,
		UniqueId: uniqueId(device.Id, EntityID(n.Address)),
		Speeds:   []string{"off", "low", "med", "high"},
	}
}

func NodeLock(device Device, n *isy.Node) GenericLock {
	return GenericLock{
		Device:   device,
		Id:       EntityID(n.Address),
		Name:     n.Name,
		UniqueId: uniqueId(device.Id, EntityID(n.Address)),
	}
}

func NodeCover(device Device, n *isy.Node) GenericCover {
	return GenericCover{
		Device:   device,
		Id:       EntityID(n.Address),
		Name:     n.Name,
		UniqueId: uniqueId(device.Id, EntityID(n.Address)),
	}
}

func NodeSensor(device Device, n *isy.Node, sensorType string) GenericSensor {
	s := GenericSensor{
		Device:     device,
		Id:         EntityID(n.Address),
		SensorType: sensorType,
		Name:       n.Name,
		UniqueId:   uniqueId(device.Id, EntityID(n.Address)),
	}
	if sensorType == SENSOR_TYPE_SENSOR {
		for _, uom := range n.UOM {
			if unit, ok := uomFriendlyName[uom]; ok {
				s.UnitOfMeasurement = unit
				s.StateClass = "measurement"
				break
			}
		}
	}
	return s
}

func ProgramSwitch(device Device, name, statusID string) GenericSwitch {
	return GenericSwitch{
		Device:   device,
		Id:       "prog_" + EntityID(statusID),
		Name:     name,
		UniqueId: uniqueId(device.Id, "prog_"+EntityID(statusID)),
		Icon:     ICON_PROGRAM,
	}
}

func ProgramLock(device Device, name, statusID string) GenericLock {
	return GenericLock{
		Device:   device,
		Id:       "prog_" + EntityID(statusID),
		Name:     name,
		UniqueId: uniqueId(device.Id, "prog_"+EntityID(statusID)),
		Icon:     ICON_PROGRAM,
	}
}

func ProgramCover(device Device, name, statusID string) GenericCover {
	return GenericCover{
		Device:   device,
		Id:       "prog_" + EntityID(statusID),
		Name:     name,
		UniqueId: uniqueId(device.Id, "prog_"+EntityID(statusID)),
		Icon:     ICON_PROGRAM,
	}
}

func ProgramFan(device Device, name, statusID string) GenericFan {
	return GenericFan{
		Device:   device,
		Id:       "prog_" + EntityID(statusID),
		Name:     name,
		UniqueId: uniqueId(device.Id, "prog_"+EntityID(statusID)),
		Icon:     ICON_PROGRAM,
	}
}

func ProgramBinarySensor(device Device, name, statusID string) GenericSensor {
	return GenericSensor{
		Device:     device,
		Id:         "prog_" + EntityID(statusID),
		SensorType: SENSOR_TYPE_BINARY,
		Name:       name,
		UniqueId:   uniqueId(device.Id, "prog_"+EntityID(statusID)),
		Icon:       ICON_PROGRAM,
	}
}

var entityIDRegexp = regexp.MustCompile("[^a-z0-9_]+")

// EntityID turns a hub address ("11 22 33 1") into an MQTT-safe id.
func EntityID(address string) string {
	return entityIDRegexp.ReplaceAllString(strings.ToLower(address), "_")
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("%s_%s", baseId, id)
}

func md5HashShort(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])[:8]
}
