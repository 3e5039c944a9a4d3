package mqtt

import (
	"fmt"

	"hub2mqtt/internal/core/domain"
)

type HADiscoveryConfig struct {
	Device            HADiscoveryDevice `json:"device"`
	StateTopic        string            `json:"state_topic"`
	CommandTopic      string            `json:"command_topic,omitempty"`
	StateClass        string            `json:"state_class,omitempty"`
	DeviceClass       string            `json:"device_class,omitempty"`
	UnitOfMeasurement string            `json:"unit_of_measurement,omitempty"`
	AvTopic           string            `json:"availability_topic,omitempty"`
	EntityCategory    string            `json:"entity_category,omitempty"`
	Name              string            `json:"name"`
	UniqueId          string            `json:"unique_id"`
	Platform          string            `json:"platform"`
	EnabledByDefault  *bool             `json:"enabled_by_default,omitempty"`
	PayloadOn         string            `json:"payload_on,omitempty"`
	PayloadOff        string            `json:"payload_off,omitempty"`
	Icon              string            `json:"icon,omitempty"`

	// light only
	BrightnessStateTopic   string `json:"brightness_state_topic,omitempty"`
	BrightnessCommandTopic string `json:"brightness_command_topic,omitempty"`
	BrightnessScale        int    `json:"brightness_scale,omitempty"`

	// fan only
	PercentageStateTopic   string `json:"percentage_state_topic,omitempty"`
	PercentageCommandTopic string `json:"percentage_command_topic,omitempty"`

	// lock only
	PayloadLock   string `json:"payload_lock,omitempty"`
	PayloadUnlock string `json:"payload_unlock,omitempty"`
	StateLocked   string `json:"state_locked,omitempty"`
	StateUnlocked string `json:"state_unlocked,omitempty"`

	// cover only
	PayloadOpen  string `json:"payload_open,omitempty"`
	PayloadClose string `json:"payload_close,omitempty"`
	StateOpen    string `json:"state_open,omitempty"`
	StateClosed  string `json:"state_closed,omitempty"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
}

func (c *MQTTClient) discoveryPrefix() string {
	if c.cfg.HADiscoveryTopic != "" {
		return c.cfg.HADiscoveryTopic
	}
	return "homeassistant"
}

func (c *MQTTClient) HADiscoverySensorTopic(sensor domain.GenericSensor) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", c.discoveryPrefix(), sensor.SensorType, sensor.Device.Id, sensor.Id)
}

func (c *MQTTClient) HADiscoverySwitchTopic(sw domain.GenericSwitch) string {
	return fmt.Sprintf("%s/switch/%s/%s/config", c.discoveryPrefix(), sw.Device.Id, sw.Id)
}

func (c *MQTTClient) HADiscoveryLightTopic(light domain.GenericLight) string {
	return fmt.Sprintf("%s/light/%s/%s/config", c.discoveryPrefix(), light.Device.Id, light.Id)
}

func (c *MQTTClient) HADiscoveryLockTopic(lock domain.GenericLock) string {
	return fmt.Sprintf("%s/lock/%s/%s/config", c.discoveryPrefix(), lock.Device.Id, lock.Id)
}

func (c *MQTTClient) HADiscoveryCoverTopic(cover domain.GenericCover) string {
	return fmt.Sprintf("%s/cover/%s/%s/config", c.discoveryPrefix(), cover.Device.Id, cover.Id)
}

func (c *MQTTClient) HADiscoveryFanTopic(fan domain.GenericFan) string {
	return fmt.Sprintf("%s/fan/%s/%s/config", c.discoveryPrefix(), fan.Device.Id, fan.Id)
}

func GenericSensorToHADiscoveryMessage(client *MQTTClient, sensor domain.GenericSensor) HADiscoveryConfig {
	dev := device(sensor.Device)
	var topic string
	switch {
	case sensor.Id == domain.SENSOR_ID_BRIDGE_STATE:
		topic = client.BridgeStateTopic()
	case sensor.SensorType == domain.SENSOR_TYPE_SENSOR:
		topic = client.SensorStateTopic(sensor.Id)
	case sensor.SensorType == domain.SENSOR_TYPE_BINARY:
		topic = client.BinarySensorStateTopic(sensor.Id)
	}
	disConfig := HADiscoveryConfig{
		Device:            dev,
		StateTopic:        topic,
		StateClass:        sensor.StateClass,
		DeviceClass:       sensor.DeviceClass,
		UnitOfMeasurement: sensor.UnitOfMeasurement,
		AvTopic:           client.BridgeStateTopic(),
		EntityCategory:    sensor.EntityCategory,
		Name:              sensor.Name,
		UniqueId:          sensor.UniqueId,
		Icon:              sensor.Icon,
		EnabledByDefault:  sensor.EnabledByDefault,
		Platform:          "mqtt",
	}
	if sensor.Id == domain.SENSOR_ID_BRIDGE_STATE {
		disConfig.PayloadOn = MQTT_PAYLOAD_ONLINE
		disConfig.PayloadOff = MQTT_PAYLOAD_OFFLINE
	} else if sensor.SensorType == domain.SENSOR_TYPE_BINARY {
		disConfig.PayloadOn = MQTT_PAYLOAD_ON
		disConfig.PayloadOff = MQTT_PAYLOAD_OFF
	}
	return disConfig
}

func GenericSwitchToHADiscoveryMessage(client *MQTTClient, sw domain.GenericSwitch) HADiscoveryConfig {
	return HADiscoveryConfig{
		Device:       device(sw.Device),
		StateTopic:   client.SwitchStateTopic(sw.Id),
		CommandTopic: client.SwitchCommandTopic(sw.Id),
		AvTopic:      client.BridgeStateTopic(),
		Name:         sw.Name,
		UniqueId:     sw.UniqueId,
		Icon:         sw.Icon,
		Platform:     "mqtt",
		PayloadOn:    MQTT_PAYLOAD_ON,
		PayloadOff:   MQTT_PAYLOAD_OFF,
	}
}

func GenericLightToHADiscoveryMessage(client *MQTTClient, light domain.GenericLight) HADiscoveryConfig {
	disConfig := HADiscoveryConfig{
		Device:       device(light.Device),
		StateTopic:   client.LightStateTopic(light.Id),
		CommandTopic: client.LightCommandTopic(light.Id),
		AvTopic:      client.BridgeStateTopic(),
		Name:         light.Name,
		UniqueId:     light.UniqueId,
		Icon:         light.Icon,
		Platform:     "mqtt",
		PayloadOn:    MQTT_PAYLOAD_ON,
		PayloadOff:   MQTT_PAYLOAD_OFF,
	}
	if light.Brightness {
		disConfig.BrightnessStateTopic = client.LightBrightnessStateTopic(light.Id)
		disConfig.BrightnessCommandTopic = client.LightBrightnessCommandTopic(light.Id)
		disConfig.BrightnessScale = 255
	}
	return disConfig
}

func GenericLockToHADiscoveryMessage(client *MQTTClient, lock domain.GenericLock) HADiscoveryConfig {
	return HADiscoveryConfig{
		Device:        device(lock.Device),
		StateTopic:    client.LockStateTopic(lock.Id),
		CommandTopic:  client.LockCommandTopic(lock.Id),
		AvTopic:       client.BridgeStateTopic(),
		Name:          lock.Name,
		UniqueId:      lock.UniqueId,
		Icon:          lock.Icon,
		Platform:      "mqtt",
		PayloadLock:   MQTT_PAYLOAD_LOCK,
		PayloadUnlock: MQTT_PAYLOAD_UNLOCK,
		StateLocked:   MQTT_PAYLOAD_LOCKED,
		StateUnlocked: MQTT_PAYLOAD_UNLOCKED,
	}
}

func GenericCoverToHADiscoveryMessage(client *MQTTClient, cover domain.GenericCover) HADiscoveryConfig {
	return HADiscoveryConfig{
		Device:       device(cover.Device),
		StateTopic:   client.CoverStateTopic(cover.Id),
		CommandTopic: client.CoverCommandTopic(cover.Id),
		AvTopic:      client.BridgeStateTopic(),
		Name:         cover.Name,
		UniqueId:     cover.UniqueId,
		Icon:         cover.Icon,
		Platform:     "mqtt",
		PayloadOpen:  MQTT_PAYLOAD_OPEN,
		PayloadClose: MQTT_PAYLOAD_CLOSE,
		StateOpen:    MQTT_PAYLOAD_OPENED,
		StateClosed:  MQTT_PAYLOAD_CLOSED,
	}
}

func GenericFanToHADiscoveryMessage(client *MQTTClient, fan domain.GenericFan) HADiscoveryConfig {
	return HADiscoveryConfig{
		Device:                 device(fan.Device),
		StateTopic:             client.FanStateTopic(fan.Id),
		CommandTopic:           client.FanCommandTopic(fan.Id),
		AvTopic:                client.BridgeStateTopic(),
		Name:                   fan.Name,
		UniqueId:               fan.UniqueId,
		Icon:                   fan.Icon,
		Platform:               "mqtt",
		PayloadOn:              MQTT_PAYLOAD_ON,
		PayloadOff:             MQTT_PAYLOAD_OFF,
		PercentageStateTopic:   client.FanPercentageStateTopic(fan.Id),
		PercentageCommandTopic: client.FanPercentageCommandTopic(fan.Id),
	}
}

func device(d domain.Device) HADiscoveryDevice {
	return HADiscoveryDevice{
		Id:           []string{d.Id},
		Manufacturer: d.Manufacturer,
		Version:      d.Version,
		Model:        d.Model,
		Name:         d.Name,
		ViaDevice:    d.ViaDevice,
	}
}
