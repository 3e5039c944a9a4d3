package classify

import (
	"testing"

	"hub2mqtt/pkg/isy"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func defaultOptions() Options {
	return Options{IgnoreString: "{IGNORE ME}", SensorString: "sensor"}
}

func classifyTestNodes(t *testing.T, opts Options) map[string][]*isy.Node {
	t.Helper()
	return Nodes(isy.TestNodes(), opts, zap.NewNop())
}

func addresses(nodes []*isy.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Address)
	}
	return out
}

func TestClassifyNodesByNodeDef(t *testing.T) {
	result := classifyTestNodes(t, defaultOptions())

	// DimmerLampSwitch and RelayLampSwitch resolve without looking at the
	// device type or uom.
	assert.Contains(t, addresses(result[PlatformLight]), "11 22 33 1")
	assert.Contains(t, addresses(result[PlatformSwitch]), "11 22 34 1")
}

func TestClassifyNodesByInsteonType(t *testing.T) {
	result := classifyTestNodes(t, defaultOptions())

	// FanLinc motor, device type 1.46.x.
	assert.Contains(t, addresses(result[PlatformFan]), "22 33 44 2")
}

func TestClassifyFanLincLightSubNode(t *testing.T) {
	result := classifyTestNodes(t, defaultOptions())

	// The FanLinc load sub-node shares the fan device type but controls the
	// attached light, so it lands on light instead.
	assert.Contains(t, addresses(result[PlatformLight]), "22 33 44 1")
	assert.NotContains(t, addresses(result[PlatformFan]), "22 33 44 1")
}

func TestClassifyNodesByUOM(t *testing.T) {
	result := classifyTestNodes(t, defaultOptions())

	assert.Contains(t, addresses(result[PlatformSensor]), "55 66 77 1")
}

func TestClassifyGroupsBecomeSwitches(t *testing.T) {
	result := classifyTestNodes(t, defaultOptions())

	assert.Contains(t, addresses(result[PlatformSwitch]), "9001")
}

func TestClassifyIgnoredNodesDropped(t *testing.T) {
	result := classifyTestNodes(t, defaultOptions())

	for platform, nodes := range result {
		assert.NotContains(t, addresses(nodes), "66 77 88 1",
			"ignored node leaked into %s", platform)
	}
}

func TestClassifyUnsupportedNodesDropped(t *testing.T) {
	result := classifyTestNodes(t, defaultOptions())

	for platform, nodes := range result {
		assert.NotContains(t, addresses(nodes), "77 88 99 1",
			"unsupported node leaked into %s", platform)
	}
}

func TestClassifySensorFlagRestrictedUOM(t *testing.T) {
	result := classifyTestNodes(t, defaultOptions())

	// "Water sensor leak" carries the sensor token and uom 78, which is in
	// the restricted binary set.
	assert.Contains(t, addresses(result[PlatformBinarySensor]), "44 55 66 1")
	assert.NotContains(t, addresses(result[PlatformSensor]), "44 55 66 1")
}

func TestClassifySensorFlagOnOffStates(t *testing.T) {
	nodes := []isy.NodeWithPath{
		{Path: "Porch", Node: &isy.Node{
			Address: "88 99 00 1", Name: "Porch sensor", Protocol: isy.ProtoInsteon,
			UOM: []string{"on", "off"}, Status: 0, Enabled: true,
		}},
		{Path: "Porch", Node: &isy.Node{
			Address: "88 99 00 2", Name: "Lux sensor", Protocol: isy.ProtoInsteon,
			UOM: []string{"36"}, Status: 450, Enabled: true,
		}},
	}
	result := Nodes(nodes, defaultOptions(), zap.NewNop())

	assert.Contains(t, addresses(result[PlatformBinarySensor]), "88 99 00 1")
	assert.Contains(t, addresses(result[PlatformSensor]), "88 99 00 2")
}

func TestClassifyEachNodeAtMostOnce(t *testing.T) {
	result := classifyTestNodes(t, defaultOptions())

	seen := map[string]string{}
	for platform, nodes := range result {
		for _, n := range nodes {
			prev, dup := seen[n.Address]
			assert.False(t, dup, "node %s placed in both %s and %s", n.Address, prev, platform)
			seen[n.Address] = platform
		}
	}
}

func TestClassifyIdempotent(t *testing.T) {
	first := classifyTestNodes(t, defaultOptions())
	second := classifyTestNodes(t, defaultOptions())

	assert.Equal(t, first, second)
}

func TestClassifyCustomIgnoreString(t *testing.T) {
	nodes := []isy.NodeWithPath{
		{Path: "Shed", Node: &isy.Node{
			Address: "10 20 30 1", Name: "Pump [skip]", Protocol: isy.ProtoInsteon,
			NodeDefID: "RelayLampSwitch", Status: 0, Enabled: true,
		}},
	}
	result := Nodes(nodes, Options{IgnoreString: "[skip]"}, zap.NewNop())

	for _, ns := range result {
		assert.Empty(t, ns)
	}
}
