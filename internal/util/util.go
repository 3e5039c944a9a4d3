package util

import (
	"hub2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		ISY: config.ISYConfig{
			Host:                 "-.-.-.-",
			Port:                 80,
			Username:             "admin",
			Password:             "admin",
			IgnoreString:         "{IGNORE ME}",
			SensorString:         "sensor",
			ResyncIntervalMillis: 60000,
		},
		Zigbee: config.ZigbeeConfig{
			Enable:    true,
			BaseTopic: "zigbee2mqtt",
		},
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "hub2mqtt",
		},
		Port: 8080,
	}
}
