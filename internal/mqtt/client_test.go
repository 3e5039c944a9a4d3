package mqtt

import (
	"testing"

	"hub2mqtt/internal/config"
	"hub2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func testMQTTConfig() config.MQTTConfig {
	return config.MQTTConfig{BaseTopic: "loremTopic"}
}

func testBinarySensor() domain.GenericSensor {
	return domain.GenericSensor{
		Device:     domain.Device{Id: "hub"},
		Id:         "door_sensor",
		SensorType: domain.SENSOR_TYPE_BINARY,
		Name:       "Door Sensor",
		UniqueId:   "abc123",
	}
}

func testLight() domain.GenericLight {
	return domain.GenericLight{
		Device:   domain.Device{Id: "hub"},
		Id:       "my_light",
		Name:     "My Light",
		UniqueId: "def456",
	}
}

func TestOnOffCommandParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	r := onOffCommandExtractor(baseTopic)

	matches := r.FindAllStringSubmatch("loremTopic/switch/my_device/command", 1)
	assert.Equal(matches[0][1], "switch", "platform extract")
	assert.Equal(matches[0][2], "my_device", "device extract")

	matches = r.FindAllStringSubmatch("loremTopic/light/my_light/command", 1)
	assert.Equal(matches[0][1], "light", "platform extract")
	assert.Equal(matches[0][2], "my_light", "device extract")

	matches = r.FindAllStringSubmatch("loremTopic/fan/my_fan/command", 1)
	assert.Equal(matches[0][1], "fan", "platform extract")
	assert.Equal(matches[0][2], "my_fan", "device extract")

	matches = r.FindAllStringSubmatch("loremTopic/lock/my_lock/command", 1)
	assert.Equal(matches[0][1], "lock", "platform extract")
	assert.Equal(matches[0][2], "my_lock", "device extract")

	matches = r.FindAllStringSubmatch("loremTopic/cover/my_cover/command", 1)
	assert.Equal(matches[0][1], "cover", "platform extract")
	assert.Equal(matches[0][2], "my_cover", "device extract")
}

func TestOnOffCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/switch/my_device/state"
	r := onOffCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestNumericCommandParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	r := numericCommandExtractor(baseTopic)

	matches := r.FindAllStringSubmatch("loremTopic/light/my_light/brightness/set", 1)
	assert.Equal(matches[0][2], "my_light", "device extract")
	assert.Equal(matches[0][3], "brightness", "param extract")

	matches = r.FindAllStringSubmatch("loremTopic/fan/my_fan/percentage/set", 1)
	assert.Equal(matches[0][2], "my_fan", "device extract")
	assert.Equal(matches[0][3], "percentage", "param extract")
}

func TestNumericCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/sensor/my_sensor/state"
	r := numericCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestLockDiscoveryPayloads(t *testing.T) {

	assert := assert.New(t)

	client := &MQTTClient{cfg: testMQTTConfig()}
	lock := domain.GenericLock{
		Device:   domain.Device{Id: "hub"},
		Id:       "my_lock",
		Name:     "My Lock",
		UniqueId: "ghi789",
	}
	cfg := GenericLockToHADiscoveryMessage(client, lock)

	assert.Equal("loremTopic/lock/my_lock/state", cfg.StateTopic, "state topic")
	assert.Equal("loremTopic/lock/my_lock/command", cfg.CommandTopic, "command topic")
	assert.Equal(MQTT_PAYLOAD_LOCK, cfg.PayloadLock, "payload_lock")
	assert.Equal(MQTT_PAYLOAD_UNLOCK, cfg.PayloadUnlock, "payload_unlock")
	assert.Equal(MQTT_PAYLOAD_LOCKED, cfg.StateLocked, "state_locked")
	assert.Equal(MQTT_PAYLOAD_UNLOCKED, cfg.StateUnlocked, "state_unlocked")
}

func TestCoverDiscoveryPayloads(t *testing.T) {

	assert := assert.New(t)

	client := &MQTTClient{cfg: testMQTTConfig()}
	cover := domain.GenericCover{
		Device:   domain.Device{Id: "hub"},
		Id:       "my_cover",
		Name:     "My Cover",
		UniqueId: "jkl012",
	}
	cfg := GenericCoverToHADiscoveryMessage(client, cover)

	assert.Equal("loremTopic/cover/my_cover/state", cfg.StateTopic, "state topic")
	assert.Equal("loremTopic/cover/my_cover/command", cfg.CommandTopic, "command topic")
	assert.Equal(MQTT_PAYLOAD_OPEN, cfg.PayloadOpen, "payload_open")
	assert.Equal(MQTT_PAYLOAD_CLOSE, cfg.PayloadClose, "payload_close")
	assert.Equal(MQTT_PAYLOAD_OPENED, cfg.StateOpen, "state_open")
	assert.Equal(MQTT_PAYLOAD_CLOSED, cfg.StateClosed, "state_closed")
}

func TestSensorBinaryPayloadsOnDiscovery(t *testing.T) {

	assert := assert.New(t)

	client := &MQTTClient{cfg: testMQTTConfig()}
	cfg := GenericSensorToHADiscoveryMessage(client, testBinarySensor())

	assert.Equal(MQTT_PAYLOAD_ON, cfg.PayloadOn, "payload_on")
	assert.Equal(MQTT_PAYLOAD_OFF, cfg.PayloadOff, "payload_off")
	assert.Equal("loremTopic/binary_sensor/door_sensor/state", cfg.StateTopic, "state topic")
}

func TestLightDiscoveryBrightness(t *testing.T) {

	assert := assert.New(t)

	client := &MQTTClient{cfg: testMQTTConfig()}
	light := testLight()
	light.Brightness = true
	cfg := GenericLightToHADiscoveryMessage(client, light)

	assert.Equal("loremTopic/light/my_light/brightness/set", cfg.BrightnessCommandTopic, "brightness command topic")
	assert.Equal(255, cfg.BrightnessScale, "brightness scale")

	light.Brightness = false
	cfg = GenericLightToHADiscoveryMessage(client, light)
	assert.Empty(cfg.BrightnessCommandTopic, "no brightness topic")
}
