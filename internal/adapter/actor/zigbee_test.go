package actor

import (
	"encoding/json"
	"testing"
	"time"

	"hub2mqtt/internal/core/domain"
	"hub2mqtt/internal/util"
	"hub2mqtt/internal/util/actorutil"
	"hub2mqtt/pkg/z2m"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testZigbeeDeviceList = `[
	{
		"ieee_address": "0x00124b00deadbeef",
		"friendly_name": "Coordinator",
		"type": "Coordinator",
		"supported": true,
		"interview_completed": true
	},
	{
		"ieee_address": "0x00124b0001aabbcc",
		"friendly_name": "bulb",
		"type": "Router",
		"supported": true,
		"interview_completed": true,
		"manufacturer": "Philips",
		"model_id": "LCT015",
		"definition": {
			"description": "Hue bulb",
			"model": "9290012573A",
			"vendor": "Philips",
			"exposes": [
				{
					"type": "light",
					"features": [
						{"type": "binary", "name": "state", "property": "state", "access": 7},
						{"type": "numeric", "name": "brightness", "property": "brightness", "access": 7}
					]
				},
				{"type": "numeric", "name": "linkquality", "property": "linkquality", "access": 1, "unit": "lqi"}
			]
		}
	},
	{
		"ieee_address": "0x00124b0002ddeeff",
		"friendly_name": "door",
		"type": "EndDevice",
		"supported": true,
		"interview_completed": true,
		"manufacturer": "Aqara",
		"model_id": "MCCGQ11LM",
		"definition": {
			"description": "Door sensor",
			"model": "MCCGQ11LM",
			"vendor": "Aqara",
			"exposes": [
				{"type": "binary", "name": "contact", "property": "contact", "access": 1}
			]
		}
	},
	{
		"ieee_address": "0x00124b0003001122",
		"friendly_name": "mystery",
		"type": "EndDevice",
		"supported": false,
		"interview_completed": true
	}
]`

// zigbeeParent stands in for the master actor: it spawns the actor under
// test as its child and forwards everything the child sends up.
type zigbeeParent struct {
	received chan any
}

type spawnChild struct {
	props *actor.Props
}

func (p *zigbeeParent) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started, *actor.Stopping, *actor.Stopped, *actor.Restarting:
	case spawnChild:
		ctx.Respond(ctx.Spawn(msg.props))
	default:
		p.received <- msg
	}
}

func (p *zigbeeParent) next(t *testing.T) any {
	select {
	case msg := <-p.received:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no message from zigbee actor")
		return nil
	}
}

func startZigbeeUnderParent(t *testing.T) (*actor.ActorSystem, *actor.RootContext, *zigbeeParent, *actor.PID) {

	cfg := util.LoadTestConfig()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	parent := &zigbeeParent{received: make(chan any, 16)}
	parentPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor { return parent }))

	// route straight to the connected behavior, no broker involved
	zig := NewZigbeeActor(&cfg, domain.BridgeDevice(cfg.MQTT.BaseTopic), logger)
	childProps := actor.PropsFromFunc(func(ctx actor.Context) {
		zig.DefaultReceive(ctx)
	})

	result, err := context.RequestFuture(parentPID, spawnChild{props: childProps}, 5*time.Second).Result()
	if err != nil {
		t.Fatal(err)
	}
	child := result.(*actor.PID)
	return as, context, parent, child
}

func TestZigbeeBridgeInfoPublishesGatewayVersion(t *testing.T) {

	assert := assert.New(t)

	as, context, parent, child := startZigbeeUnderParent(t)
	defer as.Shutdown()

	var info z2m.BridgeInfo
	assert.NoError(json.Unmarshal([]byte(`{"version":"1.35.1","coordinator":{"ieee_address":"0x00124b00deadbeef","type":"zStack3x0"}}`), &info))
	context.Send(child, zigbeeBridgeInfo{info: info})

	discovery, ok := parent.next(t).(domain.PublishDiscoveryRequest)
	assert.True(ok, "discovery request")
	assert.Len(discovery.Sensors, 1)
	assert.Equal("Gateway version", discovery.Sensors[0].Name)
	assert.Equal(domain.ENTITY_CLASS_DIAGNOSTIC, discovery.Sensors[0].EntityCategory)

	update, ok := parent.next(t).(domain.PublishSensorUpdateRequest)
	assert.True(ok, "sensor update request")
	assert.True(update.Retain, "version is retained")
	text, ok := update.Event.(domain.TextSensorUpdateEvent)
	assert.True(ok, "text event")
	assert.Equal("1.35.1", text.Value)
}

func TestZigbeeDeviceListDiscovery(t *testing.T) {

	assert := assert.New(t)

	as, context, parent, child := startZigbeeUnderParent(t)
	defer as.Shutdown()

	var devices []z2m.DeviceInfo
	assert.NoError(json.Unmarshal([]byte(testZigbeeDeviceList), &devices))
	context.Send(child, zigbeeDeviceList{devices: devices})

	discovery, ok := parent.next(t).(domain.PublishDiscoveryRequest)
	assert.True(ok, "discovery request")

	// bulb: light + linkquality sensor; door: contact binary sensor.
	// coordinator and unsupported entries never become entities.
	assert.Len(discovery.Lights, 1)
	assert.Equal("bulb light", discovery.Lights[0].Name)
	assert.True(discovery.Lights[0].Brightness)

	assert.Len(discovery.Sensors, 2)
	assert.Equal("bulb linkquality", discovery.Sensors[0].Name)
	assert.Equal("lqi", discovery.Sensors[0].UnitOfMeasurement)
	assert.Equal("door contact", discovery.Sensors[1].Name)
	assert.Equal(domain.SENSOR_TYPE_BINARY, discovery.Sensors[1].SensorType)

	assert.Empty(discovery.Switches)
	assert.Empty(discovery.Fans)
}

func TestZigbeeDeviceStateRelay(t *testing.T) {

	assert := assert.New(t)

	as, context, parent, child := startZigbeeUnderParent(t)
	defer as.Shutdown()

	var devices []z2m.DeviceInfo
	assert.NoError(json.Unmarshal([]byte(testZigbeeDeviceList), &devices))
	context.Send(child, zigbeeDeviceList{devices: devices})
	parent.next(t) // discovery

	context.Send(child, zigbeeDeviceState{
		friendlyName: "bulb",
		payload:      []byte(`{"state":"ON","brightness":200,"linkquality":45}`),
	})

	first, ok := parent.next(t).(domain.PublishSensorUpdateRequest)
	assert.True(ok, "light update")
	light, ok := first.Event.(domain.LightStateUpdateEvent)
	assert.True(ok, "light event")
	assert.True(light.On)
	assert.Equal(uint8(200), light.Brightness)

	second, ok := parent.next(t).(domain.PublishSensorUpdateRequest)
	assert.True(ok, "sensor update")
	lqi, ok := second.Event.(domain.FloatSensorUpdateEvent)
	assert.True(ok, "float event")
	assert.Equal(float64(45), lqi.Value)

	// unknown device state is dropped
	context.Send(child, zigbeeDeviceState{friendlyName: "ghost", payload: []byte(`{"state":"ON"}`)})
	select {
	case msg := <-parent.received:
		t.Errorf("unexpected message %T", msg)
	case <-time.After(500 * time.Millisecond):
	}
}
