package isy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const nodesPayload = `<?xml version="1.0" encoding="UTF-8"?>
<nodes>
	<root>Nodes</root>
	<folder>
		<address>1000</address>
		<name>Home</name>
	</folder>
	<folder>
		<address>1100</address>
		<name>Living Room</name>
		<parent type="3">1000</parent>
	</folder>
	<node flag="128" nodeDefId="DimmerLampSwitch">
		<address>11 22 33 1</address>
		<name>Ceiling Light</name>
		<parent type="3">1100</parent>
		<type>1.32.65.0</type>
		<enabled>true</enabled>
		<family>1</family>
		<property id="ST" value="255" formatted="On" uom="100"/>
	</node>
	<node flag="128">
		<address>33 44 55 1</address>
		<name>Door Sensor</name>
		<parent type="3">1000</parent>
		<type>16.2.6.0</type>
		<enabled>true</enabled>
		<property id="ST" value="0" formatted="Off" uom="2/78"/>
	</node>
	<node flag="128">
		<address>66 77 88 1</address>
		<name>Old Relay</name>
		<type>2.55.68.0</type>
		<enabled>false</enabled>
		<family>10</family>
	</node>
	<group flag="132">
		<address>9001</address>
		<name>Movie Night</name>
		<parent type="3">1000</parent>
	</group>
</nodes>`

const programsPayload = `<?xml version="1.0" encoding="UTF-8"?>
<programs>
	<program folder="true" id="0001" parentId="0001" status="true">
		<name>My Programs</name>
	</program>
	<program folder="true" id="0010" parentId="0001" status="false">
		<name>HA.switch</name>
	</program>
	<program folder="true" id="0011" parentId="0010" status="false">
		<name>Porch Heater</name>
	</program>
	<program folder="false" id="0012" parentId="0011" status="true" enabled="true">
		<name>status</name>
	</program>
	<program folder="false" id="0013" parentId="0011" status="false" enabled="true">
		<name>actions</name>
	</program>
</programs>`

func TestParseNodes(t *testing.T) {

	assert := assert.New(t)

	nodes, err := parseNodes([]byte(nodesPayload))
	assert.NoError(err)
	assert.Len(nodes, 4)

	byAddress := map[string]NodeWithPath{}
	for _, n := range nodes {
		byAddress[n.Node.Address] = n
	}

	light := byAddress["11 22 33 1"]
	assert.Equal("Ceiling Light", light.Node.Name)
	assert.Equal("Home/Living Room", light.Path)
	assert.Equal(ProtoInsteon, light.Node.Protocol)
	assert.Equal("DimmerLampSwitch", light.Node.NodeDefID)
	assert.Equal("1.32.65.0", light.Node.Type)
	assert.Equal(255, light.Node.Status)
	assert.Equal([]string{"100"}, light.Node.UOM)
	assert.True(light.Node.Enabled)

	door := byAddress["33 44 55 1"]
	assert.Equal("Home", door.Path)
	assert.Equal(ProtoInsteon, door.Node.Protocol, "missing family defaults to insteon")
	assert.Equal([]string{"2", "78"}, door.Node.UOM, "compound uom is split")
	assert.Equal(0, door.Node.Status)

	relay := byAddress["66 77 88 1"]
	assert.Equal("family-10", relay.Node.Protocol)
	assert.False(relay.Node.Enabled)
	assert.Equal(ValueUnknown, relay.Node.Status, "no ST property")

	scene := byAddress["9001"]
	assert.Equal(ProtoGroup, scene.Node.Protocol)
	assert.Equal("Movie Night", scene.Node.Name)
}

func TestParsePrograms(t *testing.T) {

	assert := assert.New(t)

	root, err := parsePrograms([]byte(programsPayload))
	assert.NoError(err)
	assert.NotNil(root)
	assert.Equal("My Programs", root.Name)
	assert.Equal(ProtoFolder, root.Protocol)

	platform := root.GetByName("HA.switch")
	assert.NotNil(platform)
	assert.Equal(ProtoFolder, platform.Protocol)

	entity := platform.GetByName("Porch Heater")
	assert.NotNil(entity)

	status := entity.GetByName("status")
	assert.NotNil(status)
	assert.Equal(ProtoProgram, status.Protocol)
	assert.True(status.Status)
	assert.True(status.Enabled)

	actions := entity.GetByName("actions")
	assert.NotNil(actions)
	assert.False(actions.Status)
}

func TestParseProgramsEmpty(t *testing.T) {

	assert := assert.New(t)

	root, err := parsePrograms([]byte(`<programs></programs>`))
	assert.NoError(err)
	assert.NotNil(root)
	assert.Empty(root.Children)
}
