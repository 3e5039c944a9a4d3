package actor

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"hub2mqtt/internal/config"
	"hub2mqtt/internal/core/domain"
	"hub2mqtt/internal/util/actorutil"
	"hub2mqtt/pkg/z2m"

	"github.com/asynkron/protoactor-go/actor"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// ZigbeeActor consumes a zigbee2mqtt gateway: it reads the retained device
// list and bridge info, maps each device's exposes to entities, and relays
// device state messages as entity updates. It keeps its own broker
// connection so a gateway on a second broker still works.
type ZigbeeActor struct {
	config   *config.Config
	behavior actor.Behavior
	stash    *actorutil.Stash
	client   pahomqtt.Client
	logger   *zap.Logger

	bridge      domain.Device
	coordinator *domain.Device
	devices     map[string]zigbeeDevice
}

type zigbeeDevice struct {
	info     z2m.DeviceInfo
	device   domain.Device
	entities []z2m.ExposedEntity
}

type zigbeeBridgeInfo struct {
	info z2m.BridgeInfo
}

type zigbeeDeviceList struct {
	devices []z2m.DeviceInfo
}

type zigbeeDeviceState struct {
	friendlyName string
	payload      []byte
}

type zigbeeConnected struct {
}

type zigbeeConnectionLost struct {
	Error error
}

func NewZigbeeActor(config *config.Config, bridge domain.Device, logger *zap.Logger) *ZigbeeActor {
	act := &ZigbeeActor{
		config:   config,
		bridge:   bridge,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		devices:  map[string]zigbeeDevice{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_ZIGBEE, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *ZigbeeActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *ZigbeeActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("zigbee@starting started")

		opts := pahomqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s:%d", state.config.MQTT.Host, state.config.MQTT.Port))
		opts.SetClientID(fmt.Sprintf("hub2mqtt_z2m_%d", rand.Intn(1000)))
		if state.config.MQTT.Username != "" && state.config.MQTT.Password != "" {
			opts.SetUsername(state.config.MQTT.Username)
			opts.SetPassword(state.config.MQTT.Password)
		}
		opts.OnConnectionLost = func(_ pahomqtt.Client, err error) {
			ctx.Send(ctx.Self(), zigbeeConnectionLost{Error: err})
		}
		state.client = pahomqtt.NewClient(opts)

		token := state.client.Connect()
		go func() {
			if !token.WaitTimeout(10 * time.Second) {
				ctx.Send(ctx.Self(), zigbeeConnectionLost{Error: fmt.Errorf("zigbee broker connect timed out")})
			} else if token.Error() != nil {
				ctx.Send(ctx.Self(), zigbeeConnectionLost{Error: token.Error()})
			} else {
				ctx.Send(ctx.Self(), zigbeeConnected{})
			}
		}()
	case zigbeeConnected:
		state.logger.Debug("zigbee@starting connected")
		state.subscribe(ctx)
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case zigbeeConnectionLost:
		state.logger.Error("zigbee@starting connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	case *actor.Restarting:
		state.stop()
	default:
		state.logger.Debug("zigbee@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *ZigbeeActor) subscribe(ctx actor.Context) {
	base := state.config.Zigbee.BaseTopic

	state.client.Subscribe(fmt.Sprintf("%s/bridge/info", base), 0, func(_ pahomqtt.Client, m pahomqtt.Message) {
		var info z2m.BridgeInfo
		if err := json.Unmarshal(m.Payload(), &info); err == nil {
			ctx.Send(ctx.Self(), zigbeeBridgeInfo{info: info})
		}
	})
	state.client.Subscribe(fmt.Sprintf("%s/bridge/devices", base), 0, func(_ pahomqtt.Client, m pahomqtt.Message) {
		var devices []z2m.DeviceInfo
		if err := json.Unmarshal(m.Payload(), &devices); err == nil {
			ctx.Send(ctx.Self(), zigbeeDeviceList{devices: devices})
		}
	})
	state.client.Subscribe(fmt.Sprintf("%s/+", base), 0, func(_ pahomqtt.Client, m pahomqtt.Message) {
		name := m.Topic()[len(base)+1:]
		ctx.Send(ctx.Self(), zigbeeDeviceState{friendlyName: name, payload: m.Payload()})
	})
}

func (state *ZigbeeActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Restarting:
		state.stop()
	case *actor.Stopping:
		state.stop()
	case domain.ActorHealthRequest:
		state.logger.Debug("zigbee@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_ZIGBEE,
			Healthy: true,
			State:   fmt.Sprintf("%d devices", len(state.devices)),
		})
	case zigbeeBridgeInfo:
		state.logger.Debug("zigbee@default bridge info", zap.String("version", msg.info.Version))
		coordinator := domain.ZigbeeCoordinatorDevice(msg.info, state.bridge)
		state.coordinator = &coordinator

		// surface the gateway version as a diagnostic sensor
		versionId := fmt.Sprintf("%s_version", coordinator.Id)
		ctx.Send(ctx.Parent(), domain.PublishDiscoveryRequest{
			Sensors: []domain.GenericSensor{{
				Device:         coordinator,
				Id:             versionId,
				SensorType:     domain.SENSOR_TYPE_SENSOR,
				Name:           "Gateway version",
				UniqueId:       versionId,
				EntityCategory: domain.ENTITY_CLASS_DIAGNOSTIC,
			}},
		})
		ctx.Send(ctx.Parent(), domain.PublishSensorUpdateRequest{
			Retain: true,
			Event: domain.TextSensorUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: versionId},
				Value:                  msg.info.Version,
			},
		})
	case zigbeeDeviceList:
		state.logger.Info("zigbee@default device list", zap.Int("devices", len(msg.devices)))
		state.rebuildDevices(ctx, msg.devices)
	case zigbeeDeviceState:
		state.relayDeviceState(ctx, msg)
	case zigbeeConnectionLost:
		state.logger.Error("zigbee@default connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	default:
		state.logger.Debug("zigbee@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *ZigbeeActor) rebuildDevices(ctx actor.Context, list []z2m.DeviceInfo) {
	state.devices = map[string]zigbeeDevice{}

	via := state.bridge
	if state.coordinator != nil {
		via = *state.coordinator
	}

	discovery := domain.PublishDiscoveryRequest{}
	for _, info := range list {
		if info.IsCoordinator() || info.Disabled || !info.Supported || !info.InterviewCompleted {
			continue
		}
		entities := z2m.MapExposes(info.Definition.Exposes)
		if len(entities) == 0 {
			continue
		}
		device := domain.ZigbeeDevice(info, via)
		state.devices[info.FriendlyName] = zigbeeDevice{
			info:     info,
			device:   device,
			entities: entities,
		}
		for _, e := range entities {
			id := zigbeeEntityId(info, e)
			switch e.Platform {
			case z2m.PlatformLight:
				discovery.Lights = append(discovery.Lights, domain.GenericLight{
					Device:     device,
					Id:         id,
					Name:       fmt.Sprintf("%s %s", info.FriendlyName, e.Name),
					UniqueId:   id,
					Brightness: true,
				})
			case z2m.PlatformSwitch:
				discovery.Switches = append(discovery.Switches, domain.GenericSwitch{
					Device:   device,
					Id:       id,
					Name:     fmt.Sprintf("%s %s", info.FriendlyName, e.Name),
					UniqueId: id,
				})
			case z2m.PlatformFan:
				discovery.Fans = append(discovery.Fans, domain.GenericFan{
					Device:   device,
					Id:       id,
					Name:     fmt.Sprintf("%s %s", info.FriendlyName, e.Name),
					UniqueId: id,
				})
			case z2m.PlatformSensor:
				discovery.Sensors = append(discovery.Sensors, domain.GenericSensor{
					Device:            device,
					Id:                id,
					SensorType:        domain.SENSOR_TYPE_SENSOR,
					Name:              fmt.Sprintf("%s %s", info.FriendlyName, e.Name),
					UniqueId:          id,
					UnitOfMeasurement: e.Unit,
					StateClass:        "measurement",
				})
			case z2m.PlatformBinarySensor:
				discovery.Sensors = append(discovery.Sensors, domain.GenericSensor{
					Device:     device,
					Id:         id,
					SensorType: domain.SENSOR_TYPE_BINARY,
					Name:       fmt.Sprintf("%s %s", info.FriendlyName, e.Name),
					UniqueId:   id,
				})
			}
		}
	}

	if len(discovery.Sensors) > 0 || len(discovery.Switches) > 0 ||
		len(discovery.Lights) > 0 || len(discovery.Fans) > 0 {
		ctx.Send(ctx.Parent(), discovery)
	}
}

func (state *ZigbeeActor) relayDeviceState(ctx actor.Context, msg zigbeeDeviceState) {
	dev, ok := state.devices[msg.friendlyName]
	if !ok {
		return
	}
	var payload map[string]any
	if err := json.Unmarshal(msg.payload, &payload); err != nil {
		state.logger.Debug("zigbee@default undecodable state payload", zap.String("device", msg.friendlyName))
		return
	}

	for _, e := range dev.entities {
		value, ok := payload[e.Property]
		if !ok {
			continue
		}
		id := zigbeeEntityId(dev.info, e)
		var event domain.SensorUpdateEvent
		switch e.Platform {
		case z2m.PlatformLight:
			ev := domain.LightStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				On:                     onOffValue(value),
			}
			if b, ok := payload["brightness"].(float64); ok {
				ev.Brightness = uint8(b)
			}
			event = ev
		case z2m.PlatformSwitch:
			event = domain.SwitchStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				Value:                  onOffValue(value),
			}
		case z2m.PlatformFan:
			event = domain.FanStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				On:                     onOffValue(value),
			}
		case z2m.PlatformSensor:
			if f, ok := value.(float64); ok {
				event = domain.FloatSensorUpdateEvent{
					SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
					Value:                  f,
					Decimals:               2,
				}
			}
		case z2m.PlatformBinarySensor:
			event = domain.BinarySensorUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				Value:                  onOffValue(value),
			}
		}
		if event != nil {
			ctx.Send(ctx.Parent(), domain.PublishSensorUpdateRequest{Event: event})
		}
	}
}

func (state *ZigbeeActor) stop() {
	state.logger.Debug("zigbee: disconnect")
	if state.client != nil {
		state.client.Disconnect(500)
	}
}

func zigbeeEntityId(info z2m.DeviceInfo, e z2m.ExposedEntity) string {
	return fmt.Sprintf("%s_%s", domain.EntityID(info.IEEEAddress), domain.EntityID(e.Property))
}

// onOffValue folds the payload shapes zigbee2mqtt uses for boolean state:
// "ON"/"OFF" strings on lights and switches, plain booleans on sensors.
func onOffValue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "ON" || v == "on" || v == "true"
	case float64:
		return v > 0
	default:
		return false
	}
}
