package actor

import (
	"fmt"
	"time"

	"hub2mqtt/internal/config"
	"hub2mqtt/internal/core/classify"
	"hub2mqtt/internal/core/domain"
	"hub2mqtt/internal/util/actorutil"
	"hub2mqtt/pkg/isy"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

// HubInventory is the classified hub content, produced by the discovery
// actor (or a resync) and owned by the node monitor.
type HubInventory struct {
	Nodes    map[string][]*isy.Node
	Programs map[string][]classify.ProgramEntity
}

type trackedEntity struct {
	platform string
	node     *isy.Node
	program  *classify.ProgramEntity
}

// NodeMonitorActor tracks every discovered entity: it turns hub feed events
// into MQTT state updates and user commands into hub calls.
type NodeMonitorActor struct {
	config    *config.Config
	behavior  actor.Behavior
	stash     *actorutil.Stash
	isyActor  *actor.PID
	mqttActor *actor.PID

	byEntityId map[string]*trackedEntity
	byAddress  map[string]*trackedEntity
	sub        *eventstream.Subscription

	logger *zap.Logger
}

func NewNodeMonitorActor(config *config.Config, isyActor, mqttActor *actor.PID, logger *zap.Logger) *NodeMonitorActor {
	act := &NodeMonitorActor{
		config:     config,
		isyActor:   isyActor,
		mqttActor:  mqttActor,
		behavior:   actor.NewBehavior(),
		stash:      &actorutil.Stash{},
		byEntityId: map[string]*trackedEntity{},
		byAddress:  map[string]*trackedEntity{},
		logger:     actorutil.ActorLogger(domain.ACTOR_ID_NODE_MONITOR, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *NodeMonitorActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *NodeMonitorActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("nodemonitor@starting started")

		// hub feed events arrive on the websocket goroutine; reroute them
		// through the mailbox
		self := ctx.Self()
		system := ctx.ActorSystem()
		state.sub = system.EventStream.Subscribe(func(evt any) {
			if e, ok := evt.(domain.HubNodeEvent); ok {
				system.Root.Send(self, e)
			}
		})
	case domain.ActorHealthRequest:
		state.logger.Debug("nodemonitor@starting ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_NODE_MONITOR,
			Healthy: true,
			State:   "waiting inventory",
		})
	case HubInventory:
		state.logger.Info("nodemonitor@starting inventory received")
		state.rebuild(msg)
		state.publishAllStates(ctx)
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
		state.unsubscribe(ctx)
	default:
		state.logger.Debug("nodemonitor@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *NodeMonitorActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("nodemonitor@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_NODE_MONITOR,
			Healthy: true,
			State:   fmt.Sprintf("%d entities", len(state.byEntityId)),
		})
	case HubInventory:
		// resync result
		state.logger.Info("nodemonitor@default inventory refresh")
		state.rebuild(msg)
		state.publishAllStates(ctx)
	case domain.HubNodeEvent:
		state.handleHubEvent(ctx, msg)
	case domain.EntityCommandRequest:
		state.handleEntityCommand(ctx, msg)
	case domain.ResyncRequest:
		state.logger.Debug("nodemonitor@default ResyncRequest")
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.isyActor, domain.GetHubSnapshotRequest{}, 30*time.Second), func(err error) any {
			return domain.GetHubSnapshotResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
	case domain.GetHubSnapshotResponse:
		if msg.HasResponseError() {
			state.logger.Error("nodemonitor@default resync failed", zap.Error(msg.GetResponseError()))
			return
		}
		nodes := classify.Nodes(msg.Nodes, classify.Options{
			IgnoreString: state.config.ISY.IgnoreString,
			SensorString: state.config.ISY.SensorString,
		}, state.logger)
		programs := classify.Programs(msg.Programs, state.logger)
		ctx.Send(ctx.Self(), HubInventory{Nodes: nodes, Programs: programs})
	case *actor.Stopping:
		state.unsubscribe(ctx)
	default:
		state.logger.Debug("nodemonitor@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *NodeMonitorActor) rebuild(inv HubInventory) {
	state.byEntityId = map[string]*trackedEntity{}
	state.byAddress = map[string]*trackedEntity{}

	for platform, nodes := range inv.Nodes {
		for _, n := range nodes {
			e := &trackedEntity{platform: platform, node: n}
			state.byEntityId[domain.EntityID(n.Address)] = e
			state.byAddress[n.Address] = e
		}
	}
	for platform, programs := range inv.Programs {
		for i := range programs {
			p := programs[i]
			e := &trackedEntity{platform: platform, program: &p}
			state.byEntityId["prog_"+domain.EntityID(p.Status.ID)] = e
		}
	}
}

func (state *NodeMonitorActor) publishAllStates(ctx actor.Context) {
	for id, e := range state.byEntityId {
		event := state.entityStateEvent(id, e)
		if event != nil {
			ctx.Send(state.mqttActor, domain.PublishSensorUpdateRequest{Retain: true, Event: event})
		}
	}
}

func (state *NodeMonitorActor) entityStateEvent(id string, e *trackedEntity) domain.SensorUpdateEvent {
	if e.node != nil {
		n := e.node
		if n.Status == isy.ValueUnknown {
			return nil
		}
		on := n.Status > 0
		switch e.platform {
		case classify.PlatformSwitch:
			return domain.SwitchStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				Value:                  on,
			}
		case classify.PlatformLight:
			return domain.LightStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				On:                     on,
				Brightness:             clampLevel(n.Status),
			}
		case classify.PlatformFan:
			return domain.FanStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				On:                     on,
				Percent:                statusToPercent(n.Status),
			}
		case classify.PlatformLock:
			return domain.LockStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				Locked:                 on,
			}
		case classify.PlatformCover:
			return domain.CoverStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				Open:                   on,
			}
		case classify.PlatformBinarySensor:
			return domain.BinarySensorUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				Value:                  on,
			}
		case classify.PlatformSensor:
			return domain.FloatSensorUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				Value:                  float64(n.Status),
			}
		}
		return nil
	}
	if e.program != nil {
		on := e.program.Status.Status
		switch e.platform {
		case classify.PlatformBinarySensor:
			return domain.BinarySensorUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				Value:                  on,
			}
		case classify.PlatformLock:
			return domain.LockStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				Locked:                 on,
			}
		case classify.PlatformCover:
			return domain.CoverStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				Open:                   on,
			}
		case classify.PlatformFan:
			var percent uint8
			if on {
				percent = 100
			}
			return domain.FanStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				On:                     on,
				Percent:                percent,
			}
		default:
			return domain.SwitchStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
				Value:                  on,
			}
		}
	}
	return nil
}

func (state *NodeMonitorActor) handleHubEvent(ctx actor.Context, msg domain.HubNodeEvent) {
	e, ok := state.byAddress[msg.Address]
	if !ok {
		return
	}
	e.node.Status = msg.Value
	id := domain.EntityID(msg.Address)
	state.logger.Debug("nodemonitor@default hub event",
		zap.String("address", msg.Address), zap.Int("value", msg.Value))
	event := state.entityStateEvent(id, e)
	if event != nil {
		ctx.Send(state.mqttActor, domain.PublishSensorUpdateRequest{Retain: true, Event: event})
	}
}

func (state *NodeMonitorActor) handleEntityCommand(ctx actor.Context, msg domain.EntityCommandRequest) {
	e, ok := state.byEntityId[msg.EntityId]
	if !ok {
		state.logger.Warn("nodemonitor@default command for unknown entity", zap.String("entity", msg.EntityId))
		return
	}
	if e.node != nil {
		ctx.Send(state.isyActor, domain.NodeCommandRequest{
			Address: e.node.Address,
			On:      msg.On,
			Level:   msg.Level,
		})
		return
	}
	if e.program != nil && e.program.Actions != nil {
		ctx.Send(state.isyActor, domain.ProgramCommandRequest{
			ProgramID: e.program.Actions.ID,
			RunThen:   msg.On,
		})
		// the hub feed does not report program status; publish optimistically
		e.program.Status.Status = msg.On
		event := state.entityStateEvent(msg.EntityId, e)
		if event != nil {
			ctx.Send(state.mqttActor, domain.PublishSensorUpdateRequest{Retain: true, Event: event})
		}
	}
}

func (state *NodeMonitorActor) unsubscribe(ctx actor.Context) {
	if state.sub != nil {
		ctx.ActorSystem().EventStream.Unsubscribe(state.sub)
		state.sub = nil
	}
}

// statusToPercent maps a hub dim level (0-255) to a fan speed percentage.
func statusToPercent(status int) uint8 {
	if status <= 0 {
		return 0
	}
	if status >= 255 {
		return 100
	}
	return uint8((status*100 + 127) / 255)
}

func clampLevel(status int) uint8 {
	if status <= 0 {
		return 0
	}
	if status >= 255 {
		return 255
	}
	return uint8(status)
}
