package actor

import (
	"fmt"
	"time"

	"hub2mqtt/internal/core/domain"
	"hub2mqtt/internal/util/actorutil"
	"hub2mqtt/pkg/isy"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// ISYActor owns the hub client. All REST calls run as background tasks so a
// slow controller never blocks the mailbox.
type ISYActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	client   isy.HubClient
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewISYActor(client isy.HubClient, logger *zap.Logger) *ISYActor {
	act := &ISYActor{
		client:   client,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_ISY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *ISYActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *ISYActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("isy@starting started")
		if err := state.client.Open(); err != nil {
			panic(err)
		}

		// forward controller state changes to the event stream; the node
		// monitor translates them into entity updates
		eventStream := ctx.ActorSystem().EventStream
		err := state.client.Subscribe(func(ev isy.Event) {
			eventStream.Publish(domain.HubNodeEvent{
				Address: ev.Address,
				Control: ev.Control,
				Value:   ev.Value,
			})
		})
		if err != nil {
			panic(err)
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.client.Close()
	default:
		state.logger.Debug("isy@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *ISYActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("isy@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_ISY,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetHubSnapshotRequest:
		state.logger.Debug("isy@default: GetHubSnapshotRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getHubSnapshot),
			mapTaskResult[domain.GetHubSnapshotResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetHubSnapshotResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(20 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingHub)
	case domain.NodeCommandRequest:
		state.logger.Debug("isy@default: NodeCommandRequest", zap.String("address", msg.Address), zap.Bool("on", msg.On))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.NodeCommandResponse {
			a := state.nodeCommand(msg)
			return &a
		}),
			mapTaskResult[domain.NodeCommandResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.NodeCommandResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(5 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingHub)
	case domain.ProgramCommandRequest:
		state.logger.Debug("isy@default: ProgramCommandRequest", zap.String("program", msg.ProgramID), zap.Bool("runThen", msg.RunThen))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.ProgramCommandResponse {
			a := state.programCommand(msg)
			return &a
		}),
			mapTaskResult[domain.ProgramCommandResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.ProgramCommandResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(5 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingHub)
	case *actor.Stopping:
		state.client.Close()
	default:
		state.logger.Debug("isy@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *ISYActor) WaitingHub(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("isy@WaitingHub backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		ctx.Send(msg.replyTo, msg.message)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
		state.client.Close()
	default:
		state.logger.Debug("isy@WaitingHub stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *ISYActor) getHubSnapshot() (*domain.GetHubSnapshotResponse, error) {
	nodes, err := a.client.Nodes()
	if err != nil {
		return nil, err
	}
	programs, err := a.client.Programs()
	if err != nil {
		return nil, err
	}
	return &domain.GetHubSnapshotResponse{
		Nodes:    nodes,
		Programs: programs,
	}, nil
}

func (a *ISYActor) nodeCommand(msg domain.NodeCommandRequest) domain.NodeCommandResponse {
	var err error
	switch {
	case msg.On && msg.Level != nil:
		err = a.client.TurnOnLevel(msg.Address, *msg.Level)
	case msg.On:
		err = a.client.TurnOn(msg.Address)
	default:
		err = a.client.TurnOff(msg.Address)
	}
	if err != nil {
		return domain.NodeCommandResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	}
	return domain.NodeCommandResponse{}
}

func (a *ISYActor) programCommand(msg domain.ProgramCommandRequest) domain.ProgramCommandResponse {
	var err error
	if msg.RunThen {
		err = a.client.RunThen(msg.ProgramID)
	} else {
		err = a.client.RunElse(msg.ProgramID)
	}
	if err != nil {
		return domain.ProgramCommandResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	}
	return domain.ProgramCommandResponse{}
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
