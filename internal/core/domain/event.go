package domain

import "fmt"

type SensorUpdateEventMixIn struct {
	Id string
}

type SensorUpdateEvent interface {
	SensorUpdateEvent() string
	SensorId() string
}

func (e SensorUpdateEventMixIn) SensorUpdateEvent() string {
	return fmt.Sprintf("%T", e)
}

func (e SensorUpdateEventMixIn) SensorId() string {
	return e.Id
}

type FloatSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value    float64
	Decimals uint
}

type BinarySensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

type SwitchStateUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

type LightStateUpdateEvent struct {
	SensorUpdateEventMixIn
	On         bool
	Brightness uint8
}

type LockStateUpdateEvent struct {
	SensorUpdateEventMixIn
	Locked bool
}

type CoverStateUpdateEvent struct {
	SensorUpdateEventMixIn
	Open bool
}

type FanStateUpdateEvent struct {
	SensorUpdateEventMixIn
	On      bool
	Percent uint8
}

type TextSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value string
}

type BridgeStateUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}
