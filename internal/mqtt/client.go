package mqtt

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"time"

	"hub2mqtt/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	MQTT_PAYLOAD_ONLINE  = "online"
	MQTT_PAYLOAD_OFFLINE = "offline"
	MQTT_PAYLOAD_ON      = "on"
	MQTT_PAYLOAD_OFF     = "off"

	// home assistant lock/cover payloads are upper-case on the command
	// side and differ from the state side
	MQTT_PAYLOAD_LOCK     = "LOCK"
	MQTT_PAYLOAD_UNLOCK   = "UNLOCK"
	MQTT_PAYLOAD_LOCKED   = "LOCKED"
	MQTT_PAYLOAD_UNLOCKED = "UNLOCKED"
	MQTT_PAYLOAD_OPEN     = "OPEN"
	MQTT_PAYLOAD_CLOSE    = "CLOSE"
	MQTT_PAYLOAD_OPENED   = "open"
	MQTT_PAYLOAD_CLOSED   = "closed"

	COMMAND_SWITCH     = "switch"
	COMMAND_LIGHT      = "light"
	COMMAND_FAN        = "fan"
	COMMAND_LOCK       = "lock"
	COMMAND_COVER      = "cover"
	COMMAND_BRIGHTNESS = "brightness"
	COMMAND_PERCENTAGE = "percentage"
)

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(fmt.Sprintf("hub2mqtt_%d", rand.Intn(1000)))
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.MQTT.BaseTopic)
	opts.WillQos = 0

	return opts
}

func CreateMQTTClient(cfg *config.Config, opts *mqtt.ClientOptions, onConnectHandler func(client mqtt.Client),
	onConnectionLostHandler func(mqtt.Client, error)) *MQTTClient {
	if onConnectHandler != nil {
		opts.OnConnect = onConnectHandler
	}
	if onConnectionLostHandler != nil {
		opts.OnConnectionLost = onConnectionLostHandler
	}
	return &MQTTClient{
		client:               mqtt.NewClient(opts),
		cfg:                  cfg.MQTT,
		onOffCommandRegexp:   onOffCommandExtractor(cfg.MQTT.BaseTopic),
		numericCommandRegexp: numericCommandExtractor(cfg.MQTT.BaseTopic),
	}
}

type MQTTClient struct {
	client               mqtt.Client
	cfg                  config.MQTTConfig
	onOffCommandRegexp   *regexp.Regexp
	numericCommandRegexp *regexp.Regexp
}

type ParsedMQTTCommand struct {
	DeviceId string
	Command  string
	Param    string
	Payload  string
}

func (c *MQTTClient) baseTopic() string {
	return c.cfg.BaseTopic
}

func (c *MQTTClient) BridgeStateTopic() string {
	return bridgeStateTopic(c.baseTopic())
}

func (c *MQTTClient) SensorStateTopic(sensorId string) string {
	return fmt.Sprintf("%s/sensor/%s/state", c.baseTopic(), sensorId)
}

func (c *MQTTClient) BinarySensorStateTopic(sensorId string) string {
	return fmt.Sprintf("%s/binary_sensor/%s/state", c.baseTopic(), sensorId)
}

func (c *MQTTClient) SwitchStateTopic(switchId string) string {
	return fmt.Sprintf("%s/switch/%s/state", c.baseTopic(), switchId)
}

func (c *MQTTClient) SwitchCommandTopic(switchId string) string {
	return fmt.Sprintf("%s/switch/%s/command", c.baseTopic(), switchId)
}

func (c *MQTTClient) LightStateTopic(lightId string) string {
	return fmt.Sprintf("%s/light/%s/state", c.baseTopic(), lightId)
}

func (c *MQTTClient) LightCommandTopic(lightId string) string {
	return fmt.Sprintf("%s/light/%s/command", c.baseTopic(), lightId)
}

func (c *MQTTClient) LightBrightnessStateTopic(lightId string) string {
	return fmt.Sprintf("%s/light/%s/brightness/state", c.baseTopic(), lightId)
}

func (c *MQTTClient) LightBrightnessCommandTopic(lightId string) string {
	return fmt.Sprintf("%s/light/%s/brightness/set", c.baseTopic(), lightId)
}

func (c *MQTTClient) LockStateTopic(lockId string) string {
	return fmt.Sprintf("%s/lock/%s/state", c.baseTopic(), lockId)
}

func (c *MQTTClient) LockCommandTopic(lockId string) string {
	return fmt.Sprintf("%s/lock/%s/command", c.baseTopic(), lockId)
}

func (c *MQTTClient) CoverStateTopic(coverId string) string {
	return fmt.Sprintf("%s/cover/%s/state", c.baseTopic(), coverId)
}

func (c *MQTTClient) CoverCommandTopic(coverId string) string {
	return fmt.Sprintf("%s/cover/%s/command", c.baseTopic(), coverId)
}

func (c *MQTTClient) FanStateTopic(fanId string) string {
	return fmt.Sprintf("%s/fan/%s/state", c.baseTopic(), fanId)
}

func (c *MQTTClient) FanCommandTopic(fanId string) string {
	return fmt.Sprintf("%s/fan/%s/command", c.baseTopic(), fanId)
}

func (c *MQTTClient) FanPercentageStateTopic(fanId string) string {
	return fmt.Sprintf("%s/fan/%s/percentage/state", c.baseTopic(), fanId)
}

func (c *MQTTClient) FanPercentageCommandTopic(fanId string) string {
	return fmt.Sprintf("%s/fan/%s/percentage/set", c.baseTopic(), fanId)
}

func (c *MQTTClient) ParseMQTTCommand(msg mqtt.Message) (*ParsedMQTTCommand, error) {
	onOffCmd, err := c.parseOnOffMQTTCommand(msg)
	if err == nil {
		return onOffCmd, nil
	}
	numericCmd, err := c.parseNumericMQTTCommand(msg)
	if err == nil {
		return numericCmd, nil
	}
	return nil, err
}

func (c *MQTTClient) parseOnOffMQTTCommand(msg mqtt.Message) (*ParsedMQTTCommand, error) {
	topic := msg.Topic()
	matches := c.onOffCommandRegexp.FindAllStringSubmatch(topic, 1)
	if len(matches) == 0 {
		return nil, errors.New("invalid command")
	}
	if len(matches[0]) != 3 {
		return nil, errors.New("invalid on/off command")
	}
	return &ParsedMQTTCommand{
		DeviceId: matches[0][2],
		Command:  matches[0][1],
		Payload:  string(msg.Payload()),
	}, nil
}

func (c *MQTTClient) parseNumericMQTTCommand(msg mqtt.Message) (*ParsedMQTTCommand, error) {
	topic := msg.Topic()
	matches := c.numericCommandRegexp.FindAllStringSubmatch(topic, 1)
	if len(matches) == 0 {
		return nil, errors.New("invalid command")
	}
	if len(matches[0]) != 4 {
		return nil, errors.New("invalid numeric command")
	}

	// try to parse a valid number
	_, err := strconv.ParseFloat(string(msg.Payload()), 64)
	if err != nil {
		return nil, err
	}

	return &ParsedMQTTCommand{
		DeviceId: matches[0][2],
		Command:  matches[0][3],
		Payload:  string(msg.Payload()),
	}, nil
}

func (c *MQTTClient) Publish(topic string, payload any, qos byte, retain bool, continuation func(error), timeout time.Duration) {
	token := c.client.Publish(topic, qos, retain, payload)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT publish timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Subscribe(topic string, qos byte, handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	token := c.client.Subscribe(topic, qos, handler)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT subscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) SubscribeToCommandTopic(handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	c.Subscribe(c.commandTopic(), 1, handler, continuation, timeout)
}

func (c *MQTTClient) Unsubscribe(topic string, continuation func(error), timeout time.Duration) {
	token := c.client.Unsubscribe(topic)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT unsubscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Connect(continuation func(error), timeout time.Duration) {
	token := c.client.Connect()
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT connect timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Disconnect(timeout time.Duration) {
	c.client.Disconnect(uint(timeout.Milliseconds()))
}

func (c *MQTTClient) commandTopic() string {
	return fmt.Sprintf("%s/#", c.baseTopic())
}

func onOffCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("%s/(switch|light|fan|lock|cover)/([a-zA-Z0-9_]+)/command", baseTopic))
}

func numericCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("%s/(light|fan)/([a-zA-Z0-9_]+)/(brightness|percentage)/set", baseTopic))
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}
