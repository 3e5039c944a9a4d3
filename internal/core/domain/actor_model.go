package domain

import "hub2mqtt/pkg/isy"

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_ISY          = "isy"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_ZIGBEE       = "zigbee"
	ACTOR_ID_DISCOVERY    = "hadiscovery"
	ACTOR_ID_NODE_MONITOR = "nodemonitor"
)

// Hub actor messages

type GetHubSnapshotRequest struct {
	ActorRequestMixIn
}

type GetHubSnapshotResponse struct {
	ActorResponseMixIn
	Nodes    []isy.NodeWithPath
	Programs *isy.Program
}

type NodeCommandRequest struct {
	ActorRequestMixIn
	Address string
	On      bool
	// optional dim level, 0-255
	Level *uint8
}

type NodeCommandResponse struct {
	ActorResponseMixIn
}

type ProgramCommandRequest struct {
	ActorRequestMixIn
	ProgramID string
	RunThen   bool
}

type ProgramCommandResponse struct {
	ActorResponseMixIn
}

// EntityCommandRequest is a user command extracted from an MQTT topic. The
// node monitor owns the entity-id to node/program mapping and translates it
// into a NodeCommandRequest or ProgramCommandRequest.
type EntityCommandRequest struct {
	ActorRequestMixIn
	EntityId string
	Platform string
	On       bool
	// brightness (0-255) or fan percentage (0-100), when the command
	// carried a numeric payload
	Level *uint8
}

type EntityCommandResponse struct {
	ActorResponseMixIn
}

// ResyncRequest asks the hub actor for a fresh inventory; the node monitor
// re-emits every known state afterwards. Sent by the quartz resync job.
type ResyncRequest struct {
	ActorRequestMixIn
}

// HubNodeEvent is a node state change from the controller's event feed,
// published on the actor system event stream.
type HubNodeEvent struct {
	Address string
	Control string
	Value   int
}

// MQTT actor messages

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors  []GenericSensor
	Switches []GenericSwitch
	Lights   []GenericLight
	Fans     []GenericFan
	Locks    []GenericLock
	Covers   []GenericCover
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

// Health check

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
