package actor

import (
	"errors"
	"fmt"
	"log"
	"time"

	adactor "hub2mqtt/internal/adapter/actor"
	"hub2mqtt/internal/config"
	"hub2mqtt/internal/core/domain"
	. "hub2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type ISYActorProvider func() *adactor.ISYActor

type MQTTActorProvider func() *adactor.MQTTActor

type ZigbeeActorProvider func(bridge domain.Device) *adactor.ZigbeeActor

type MasterOfPuppetsActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck  healthCheckResult
	isyActor            *actor.PID
	mqttActor           *actor.PID
	zigbeeActor         *actor.PID
	nodeMonitorActor    *actor.PID
	isyActorProvider    ISYActorProvider
	mqttActorProvider   MQTTActorProvider
	zigbeeActorProvider ZigbeeActorProvider
	logger              *zap.Logger
}

type healthCheckResult struct {
	isyActorHealthy         bool
	mqttActorHealthy        bool
	nodeMonitorActorHealthy bool
	checksReceived          int
	respondTo               *actor.PID
}

func NewMasterOfPuppetsActor(config config.Config, isyActorProvider ISYActorProvider,
	mqttActorProvider MQTTActorProvider, zigbeeActorProvider ZigbeeActorProvider, logger *zap.Logger) *MasterOfPuppetsActor {
	act := &MasterOfPuppetsActor{
		config:              config,
		behavior:            actor.NewBehavior(),
		stash:               &Stash{},
		logger:              ActorLogger(domain.ACTOR_ID_MASTER, logger),
		isyActorProvider:    isyActorProvider,
		mqttActorProvider:   mqttActorProvider,
		zigbeeActorProvider: zigbeeActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterOfPuppetsActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterOfPuppetsActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset()

		isyActorPID, err := state.startISYActor(ctx)
		if err != nil {
			panic(err)
		}
		state.isyActor = isyActorPID

		mqttActorPID, err := state.startMQTTActor(ctx)
		if err != nil {
			panic(err)
		}
		state.mqttActor = mqttActorPID

		nodeMonitorPID, err := state.startNodeMonitorActor(ctx)
		if err != nil {
			panic(err)
		}
		state.nodeMonitorActor = nodeMonitorPID

		if state.config.Zigbee.Enable && state.zigbeeActorProvider != nil {
			zigbeeActorPID, err := state.startZigbeeActor(ctx)
			if err != nil {
				panic(err)
			}
			state.zigbeeActor = zigbeeActorPID
		}

		if state.config.MQTT.HADiscoveryEnable {
			_, err := state.startHADiscoveryActor(ctx)
			if err != nil {
				panic(err)
			}
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.isyActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_ISY,
				Healthy: false,
			}
		})
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.nodeMonitorActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_NODE_MONITOR,
				Healthy: false,
			}
		})

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case adactor.ParsedCommand:
		// translate and route the command to the node monitor
		state.logger.Debug("master@default parsedCommand", zap.Any("command", msg.Command))
		if msg.Command != nil {
			cmd, err := ParsedMQTTCommandToCommand(*msg.Command)
			if err == nil && cmd != nil {
				switch pcmd := cmd.(type) {
				case domain.EntityCommandRequest:
					ctx.Send(state.nodeMonitorActor, pcmd)
				}
			}
		}
	case domain.ResyncRequest:
		state.logger.Debug("master@default ResyncRequest")
		ctx.Send(state.nodeMonitorActor, msg)
	case domain.PublishDiscoveryRequest:
		// zigbee child discovery payloads go through the broker actor
		ctx.Send(state.mqttActor, msg)
	case domain.PublishSensorUpdateRequest:
		ctx.Send(state.mqttActor, msg)
	case *actor.Terminated:
		// if some actor fails on boot, terminate
		if msg.Who.Id == fmt.Sprintf("%s/%s", domain.ACTOR_ID_MASTER, domain.ACTOR_ID_ISY) {
			state.logger.Error("master@default isy error")
			panic(errors.New("isy terminated"))
		}
	default:
		state.logger.Debug("master@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			if msg.Id == domain.ACTOR_ID_ISY {
				state.currentHealthCheck.isyActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_MQTT {
				state.currentHealthCheck.mqttActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_NODE_MONITOR {
				state.currentHealthCheck.nodeMonitorActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {

			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) startISYActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	isyProps := actor.PropsFromProducer(func() actor.Actor {
		return state.isyActorProvider()
	}, actor.WithSupervisor(supervisor))
	isyActorPID, err := ctx.SpawnNamed(isyProps, domain.ACTOR_ID_ISY)
	if err != nil {
		return nil, err
	}

	return isyActorPID, nil
}

func (state *MasterOfPuppetsActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider()
	}, actor.WithSupervisor(supervisor))
	mqttActorPID, err := ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
	if err != nil {
		return nil, err
	}

	return mqttActorPID, nil
}

func (state *MasterOfPuppetsActor) startZigbeeActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	bridge := domain.BridgeDevice(state.config.MQTT.BaseTopic)
	zigbeeProps := actor.PropsFromProducer(func() actor.Actor {
		return state.zigbeeActorProvider(bridge)
	}, actor.WithSupervisor(supervisor))
	zigbeeActorPID, err := ctx.SpawnNamed(zigbeeProps, domain.ACTOR_ID_ZIGBEE)
	if err != nil {
		return nil, err
	}

	return zigbeeActorPID, nil
}

func (state *MasterOfPuppetsActor) startNodeMonitorActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	monitorProps := actor.PropsFromProducer(func() actor.Actor {
		return NewNodeMonitorActor(&state.config, state.isyActor, state.mqttActor, state.logger)
	}, actor.WithSupervisor(supervisor))
	monitorPID, err := ctx.SpawnNamed(monitorProps, domain.ACTOR_ID_NODE_MONITOR)
	if err != nil {
		return nil, err
	}

	return monitorPID, nil
}

func (state *MasterOfPuppetsActor) startHADiscoveryActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	haDiscProps := actor.PropsFromProducer(func() actor.Actor {
		return NewHADiscoveryActor(&state.config, state.isyActor, state.mqttActor, state.nodeMonitorActor, state.logger)
	}, actor.WithSupervisor(supervisor))
	haDiscPID, err := ctx.SpawnNamed(haDiscProps, domain.ACTOR_ID_DISCOVERY)
	if err != nil {
		return nil, err
	}

	return haDiscPID, nil
}

func (state *healthCheckResult) reset() {
	state.isyActorHealthy = false
	state.mqttActorHealthy = false
	state.nodeMonitorActorHealthy = false
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived == 3
}

func (state *healthCheckResult) allHealthy() bool {
	return state.isyActorHealthy && state.mqttActorHealthy && state.nodeMonitorActorHealthy
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
