package actor

import (
	"testing"
	"time"

	"hub2mqtt/internal/core/domain"
	"hub2mqtt/internal/util/actorutil"
	"hub2mqtt/pkg/isy"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGetHubSnapshotISYActor(t *testing.T) {

	assert := assert.New(t)

	client := isy.CreateTestHubClient()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewISYActor(client, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.GetHubSnapshotRequest{}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetHubSnapshotResponse)

	assert.Equal(len(isy.TestNodes()), len(resp.Nodes), "node count")
	assert.NotNil(resp.Programs, "program tree")
	assert.Equal("My Programs", resp.Programs.Name, "program root")

	context.Stop(pid)

	as.Shutdown()
}

func TestGetHubSnapshotErrorISYActor(t *testing.T) {

	assert := assert.New(t)

	// an empty client has no node list loaded, so the snapshot call fails
	client := &isy.TestHubClient{}

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewISYActor(client, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.GetHubSnapshotRequest{}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetHubSnapshotResponse)

	assert.True(resp.HasResponseError(), "snapshot error propagated")

	context.Stop(pid)

	as.Shutdown()
}

func TestNodeCommandISYActor(t *testing.T) {

	assert := assert.New(t)

	client := isy.CreateTestHubClient()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewISYActor(client, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	on := domain.NodeCommandRequest{Address: "11 22 34 1", On: true}
	result, err := context.RequestFuture(pid, on, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	_, ok := result.(domain.NodeCommandResponse)
	assert.True(ok, "on response")
	assert.Contains(client.OnCalls, "11 22 34 1", "on call")

	level := uint8(128)
	dim := domain.NodeCommandRequest{Address: "11 22 33 1", On: true, Level: &level}
	result, err = context.RequestFuture(pid, dim, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	_, ok = result.(domain.NodeCommandResponse)
	assert.True(ok, "dim response")
	assert.Equal(uint8(128), client.LevelCalls["11 22 33 1"], "dim level")

	off := domain.NodeCommandRequest{Address: "11 22 34 1", On: false}
	result, err = context.RequestFuture(pid, off, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	_, ok = result.(domain.NodeCommandResponse)
	assert.True(ok, "off response")
	assert.Contains(client.OffCalls, "11 22 34 1", "off call")

	context.Stop(pid)

	as.Shutdown()
}

func TestProgramCommandISYActor(t *testing.T) {

	assert := assert.New(t)

	client := isy.CreateTestHubClient()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewISYActor(client, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.ProgramCommandRequest{ProgramID: "0013", RunThen: true}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	_, ok := result.(domain.ProgramCommandResponse)
	assert.True(ok, "then response")
	assert.Contains(client.ThenCalls, "0013", "then call")

	msg = domain.ProgramCommandRequest{ProgramID: "0013", RunThen: false}
	result, err = context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	_, ok = result.(domain.ProgramCommandResponse)
	assert.True(ok, "else response")
	assert.Contains(client.ElseCalls, "0013", "else call")

	context.Stop(pid)

	as.Shutdown()
}

func TestHubEventPublishedToEventStream(t *testing.T) {

	assert := assert.New(t)

	client := isy.CreateTestHubClient()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	events := make(chan domain.HubNodeEvent, 1)
	sub := as.EventStream.Subscribe(func(evt interface{}) {
		if ev, ok := evt.(domain.HubNodeEvent); ok {
			events <- ev
		}
	})
	defer as.EventStream.Unsubscribe(sub)

	props := actor.PropsFromProducer(func() actor.Actor { return NewISYActor(client, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	client.PushEvent(isy.Event{Address: "11 22 33 1", Control: "ST", Value: 255})

	select {
	case ev := <-events:
		assert.Equal("11 22 33 1", ev.Address, "event address")
		assert.Equal("ST", ev.Control, "event control")
		assert.Equal(255, ev.Value, "event value")
	case <-time.After(5 * time.Second):
		t.Error("no hub event received")
	}

	context.Stop(pid)

	as.Shutdown()
}
