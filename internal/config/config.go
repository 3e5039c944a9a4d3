package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	ISY      ISYConfig    `mapstructure:"isy"`
	Zigbee   ZigbeeConfig `mapstructure:"zigbee"`
	MQTT     MQTTConfig   `mapstructure:"mqtt"`
	Cloud    CloudConfig  `mapstructure:"cloud"`

	Port    uint `mapstructure:"port"`
	HttpLog bool `mapstructure:"http_log"`
}

type ISYConfig struct {
	Host     string
	Port     uint
	HTTPS    bool `mapstructure:"https"`
	Username string
	Password string
	// Nodes whose name or path contains IgnoreString are never imported.
	IgnoreString string `mapstructure:"ignore_string"`
	// Nodes whose name or path contains SensorString are forced through the
	// sensor/binary_sensor decision.
	SensorString         string `mapstructure:"sensor_string"`
	ResyncIntervalMillis uint32 `mapstructure:"resync_interval_millis"`
}

type ZigbeeConfig struct {
	Enable    bool   `mapstructure:"enable"`
	BaseTopic string `mapstructure:"base_topic"`
}

type CloudConfig struct {
	Endpoint string
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
