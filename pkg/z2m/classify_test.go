package z2m

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapExposesLightComposite(t *testing.T) {

	assert := assert.New(t)

	entities := MapExposes([]Expose{
		{
			Type: "light",
			Features: []Expose{
				{Type: "binary", Name: "state", Property: "state", Access: 7},
				{Type: "numeric", Name: "brightness", Property: "brightness", Access: 7},
			},
		},
	})

	assert.Len(entities, 1)
	assert.Equal(PlatformLight, entities[0].Platform)
	assert.Equal("state", entities[0].Property)
	assert.True(entities[0].Settable)
}

func TestMapExposesSwitchAndFanComposite(t *testing.T) {

	assert := assert.New(t)

	entities := MapExposes([]Expose{
		{
			Type: "switch",
			Features: []Expose{
				{Type: "binary", Name: "state", Property: "state_l1", Access: 7},
			},
		},
		{
			Type: "fan",
			Features: []Expose{
				{Type: "binary", Name: "state", Property: "fan_state", Access: 7},
			},
		},
	})

	assert.Len(entities, 2)
	assert.Equal(PlatformSwitch, entities[0].Platform)
	assert.Equal("state_l1", entities[0].Property, "feature property wins over feature name")
	assert.Equal(PlatformFan, entities[1].Platform)
	assert.Equal("fan_state", entities[1].Property)
}

func TestMapExposesBareNumericBecomesSensor(t *testing.T) {

	assert := assert.New(t)

	entities := MapExposes([]Expose{
		{Type: "numeric", Name: "temperature", Property: "temperature", Access: 1, Unit: "°C"},
		{Type: "numeric", Access: 1},
	})

	assert.Len(entities, 1, "numeric without property is skipped")
	assert.Equal(PlatformSensor, entities[0].Platform)
	assert.Equal("temperature", entities[0].Property)
	assert.Equal("°C", entities[0].Unit)
	assert.False(entities[0].Settable)
}

func TestMapExposesBinaryAccessDecidesPlatform(t *testing.T) {

	assert := assert.New(t)

	entities := MapExposes([]Expose{
		{Type: "binary", Name: "contact", Property: "contact", Access: AccessState},
		{Type: "binary", Name: "child_lock", Property: "child_lock", Access: AccessState | AccessSet},
	})

	assert.Len(entities, 2)
	assert.Equal(PlatformBinarySensor, entities[0].Platform)
	assert.False(entities[0].Settable)
	assert.Equal(PlatformSwitch, entities[1].Platform, "settable binary becomes a switch")
	assert.True(entities[1].Settable)
}

func TestMapExposesSkipsUnknownTypes(t *testing.T) {

	assert := assert.New(t)

	entities := MapExposes([]Expose{
		{Type: "enum", Name: "power_on_behavior", Property: "power_on_behavior", Access: 7},
		{Type: "composite", Name: "color", Property: "color", Access: 7},
	})

	assert.Empty(entities)
}

func TestMapExposesCompositeWithoutStateFeature(t *testing.T) {

	assert := assert.New(t)

	entities := MapExposes([]Expose{
		{Type: "light", Features: []Expose{
			{Type: "numeric", Name: "brightness", Property: "brightness", Access: 7},
		}},
	})

	assert.Len(entities, 1)
	assert.Equal("state", entities[0].Property, "falls back to the conventional property")
}
