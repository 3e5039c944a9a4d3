package actor

import (
	"errors"
	"fmt"
	"time"

	"hub2mqtt/internal/config"
	"hub2mqtt/internal/core/classify"
	"hub2mqtt/internal/core/domain"
	"hub2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// HADiscoveryActor runs once at boot: it waits for the hub and broker
// actors to report healthy, pulls a hub snapshot, classifies everything and
// publishes the discovery payloads. The resulting inventory is handed to
// the node monitor, which owns it from then on.
type HADiscoveryActor struct {
	config           *config.Config
	behavior         actor.Behavior
	stash            *actorutil.Stash
	isyActor         *actor.PID
	mqttActor        *actor.PID
	nodeMonitorActor *actor.PID
	isyActorHealthy  bool
	mqttActorHealthy bool
	healthyRecv      int

	logger *zap.Logger
}

func NewHADiscoveryActor(config *config.Config, isyActor, mqttActor, nodeMonitorActor *actor.PID, logger *zap.Logger) *HADiscoveryActor {
	act := &HADiscoveryActor{
		config:           config,
		isyActor:         isyActor,
		mqttActor:        mqttActor,
		nodeMonitorActor: nodeMonitorActor,
		behavior:         actor.NewBehavior(),
		stash:            &actorutil.Stash{},
		logger:           actorutil.ActorLogger(domain.ACTOR_ID_DISCOVERY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HADiscoveryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HADiscoveryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("hadiscovery@starting started")

		state.healthyRecv = 0
		state.isyActorHealthy = false
		state.mqttActorHealthy = false
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.isyActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_ISY,
				Healthy: false,
			}
		})
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		state.behavior.Become(state.WaitingHealthyReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("hadiscovery@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.logger.Debug("hadiscovery@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.healthyRecv++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_ISY:
				state.isyActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.mqttActorHealthy = true
			}
		}
		if state.healthyRecv == 2 {
			if state.isyActorHealthy && state.mqttActorHealthy {
				actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.isyActor, domain.GetHubSnapshotRequest{}, 30*time.Second), func(err error) any {
					return domain.GetHubSnapshotResponse{
						ActorResponseMixIn: domain.ActorResponseMixIn{
							ResponseError: err,
						},
					}
				})
				state.behavior.Become(state.WaitingSnapshotReceive)
				state.stash.UnstashAll(ctx)
			} else {
				panic(errors.New("MQTT Actor or ISY Actor are not healthy"))
			}
		}
	default:
		state.logger.Debug("hadiscovery@healthcheck: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) Done(ctx actor.Context) {

}

func (state *HADiscoveryActor) WaitingSnapshotReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetHubSnapshotResponse:
		if msg.HasResponseError() {
			panic(msg.GetResponseError())
		}
		state.logger.Debug("hadiscovery@snapshot: GetHubSnapshotResponse",
			zap.Int("nodes", len(msg.Nodes)))

		nodesByPlatform := classify.Nodes(msg.Nodes, classify.Options{
			IgnoreString: state.config.ISY.IgnoreString,
			SensorString: state.config.ISY.SensorString,
		}, state.logger)
		programsByPlatform := classify.Programs(msg.Programs, state.logger)

		var sensors []domain.GenericSensor
		var switches []domain.GenericSwitch
		var lights []domain.GenericLight
		var fans []domain.GenericFan
		var locks []domain.GenericLock
		var covers []domain.GenericCover

		bridgeDevice := domain.BridgeDevice(state.config.MQTT.BaseTopic)
		sensors = append(sensors, domain.BridgeSensors(bridgeDevice)...)

		hubDevice := domain.HubDevice(state.config.ISY.Host, bridgeDevice)
		entityDevice := hubDevice

		for _, n := range nodesByPlatform[classify.PlatformSwitch] {
			switches = append(switches, domain.NodeSwitch(entityDevice, n))
			entityDevice = domain.IdDevice(hubDevice)
		}
		for _, n := range nodesByPlatform[classify.PlatformLight] {
			lights = append(lights, domain.NodeLight(entityDevice, n))
			entityDevice = domain.IdDevice(hubDevice)
		}
		for _, n := range nodesByPlatform[classify.PlatformFan] {
			fans = append(fans, domain.NodeFan(entityDevice, n))
			entityDevice = domain.IdDevice(hubDevice)
		}
		for _, n := range nodesByPlatform[classify.PlatformLock] {
			locks = append(locks, domain.NodeLock(entityDevice, n))
			entityDevice = domain.IdDevice(hubDevice)
		}
		for _, n := range nodesByPlatform[classify.PlatformCover] {
			covers = append(covers, domain.NodeCover(entityDevice, n))
			entityDevice = domain.IdDevice(hubDevice)
		}
		for _, n := range nodesByPlatform[classify.PlatformSensor] {
			sensors = append(sensors, domain.NodeSensor(entityDevice, n, domain.SENSOR_TYPE_SENSOR))
			entityDevice = domain.IdDevice(hubDevice)
		}
		for _, n := range nodesByPlatform[classify.PlatformBinarySensor] {
			sensors = append(sensors, domain.NodeSensor(entityDevice, n, domain.SENSOR_TYPE_BINARY))
			entityDevice = domain.IdDevice(hubDevice)
		}

		for _, p := range programsByPlatform[classify.PlatformSwitch] {
			switches = append(switches, domain.ProgramSwitch(entityDevice, p.Name, p.Status.ID))
			entityDevice = domain.IdDevice(hubDevice)
		}
		for _, p := range programsByPlatform[classify.PlatformLock] {
			locks = append(locks, domain.ProgramLock(entityDevice, p.Name, p.Status.ID))
			entityDevice = domain.IdDevice(hubDevice)
		}
		for _, p := range programsByPlatform[classify.PlatformCover] {
			covers = append(covers, domain.ProgramCover(entityDevice, p.Name, p.Status.ID))
			entityDevice = domain.IdDevice(hubDevice)
		}
		for _, p := range programsByPlatform[classify.PlatformFan] {
			fans = append(fans, domain.ProgramFan(entityDevice, p.Name, p.Status.ID))
			entityDevice = domain.IdDevice(hubDevice)
		}
		for _, p := range programsByPlatform[classify.PlatformBinarySensor] {
			sensors = append(sensors, domain.ProgramBinarySensor(entityDevice, p.Name, p.Status.ID))
			entityDevice = domain.IdDevice(hubDevice)
		}

		ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
			Sensors:  sensors,
			Switches: switches,
			Lights:   lights,
			Fans:     fans,
			Locks:    locks,
			Covers:   covers,
		})

		// hand the classified inventory over to the node monitor
		ctx.Send(state.nodeMonitorActor, HubInventory{
			Nodes:    nodesByPlatform,
			Programs: programsByPlatform,
		})

		state.behavior.Become(state.Done)

	default:
		state.logger.Debug("hadiscovery@snapshot: default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}
