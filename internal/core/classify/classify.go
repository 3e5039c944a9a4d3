// Package classify sorts controller-reported nodes and programs into the
// platform buckets the discovery layer publishes entities for.
//
// Classification is a pure single pass: each node is checked against a fixed
// chain of matchers in decreasing reliability order (node-def, Insteon type,
// uom id, uom-as-states) and lands in exactly one platform's list, or in
// none. Missing attributes never fail a node, they just don't match.
package classify

import (
	"strings"

	"hub2mqtt/pkg/isy"

	"go.uber.org/zap"
)

// Options carries the per-pass configuration. Zero values for Filters and
// Platforms fall back to the shipped tables.
type Options struct {
	// IgnoreString drops a node entirely when it appears in the node's
	// name or folder path.
	IgnoreString string
	// SensorString forces a node through the binary_sensor-vs-sensor
	// decision when it appears in the node's name or folder path.
	SensorString string
	Filters      map[string]Filter
	Platforms    []string
}

func (o Options) filters() map[string]Filter {
	if o.Filters != nil {
		return o.Filters
	}
	return NodeFilters
}

func (o Options) platforms() []string {
	if o.Platforms != nil {
		return o.Platforms
	}
	return SupportedPlatforms
}

// Nodes classifies every node into at most one platform bucket. The result
// maps platform name to nodes in discovery order. Unmatched nodes are logged
// and skipped, never an error.
func Nodes(nodes []isy.NodeWithPath, opts Options, logger *zap.Logger) map[string][]*isy.Node {
	result := make(map[string][]*isy.Node, len(opts.platforms()))
	for _, platform := range opts.platforms() {
		result[platform] = []*isy.Node{}
	}

	for _, np := range nodes {
		node := np.Node

		if opts.IgnoreString != "" &&
			(strings.Contains(np.Path, opts.IgnoreString) || strings.Contains(node.Name, opts.IgnoreString)) {
			// don't import this node as a device at all
			continue
		}

		if node.Protocol == isy.ProtoGroup {
			result[GroupPlatform] = append(result[GroupPlatform], node)
			continue
		}

		if opts.SensorString != "" &&
			(strings.Contains(np.Path, opts.SensorString) || strings.Contains(node.Name, opts.SensorString)) {
			// The user flagged this as a sensor; the only question left is
			// whether it is a binary one.
			if platform, ok := sensorPlatform(node, opts.filters()); ok {
				result[platform] = append(result[platform], node)
			} else {
				result[PlatformSensor] = append(result[PlatformSensor], node)
			}
			continue
		}

		// Matchers ordered from most to least reliable across firmware
		// versions and device families.
		if platform, ok := matchNodeDef(node, opts.platforms(), opts.filters()); ok {
			result[platform] = append(result[platform], node)
			continue
		}
		if platform, ok := matchInsteonType(node, opts.platforms(), opts.filters()); ok {
			result[platform] = append(result[platform], node)
			continue
		}
		if platform, ok := matchUOM(node, opts.platforms(), opts.filters()); ok {
			result[platform] = append(result[platform], node)
			continue
		}
		if platform, ok := matchStatesInUOM(node, opts.platforms(), opts.filters()); ok {
			result[platform] = append(result[platform], node)
			continue
		}

		logger.Warn("unsupported node",
			zap.String("name", node.Name),
			zap.String("type", node.Type))
	}

	return result
}

// sensorPlatform decides binary_sensor vs sensor for a node already known
// to be a sensor. The uom checks use a restricted on/off vocabulary instead
// of the platform tables, which is only safe in this context.
func sensorPlatform(node *isy.Node, filters map[string]Filter) (string, bool) {
	bsOnly := []string{PlatformBinarySensor}
	if platform, ok := matchNodeDef(node, bsOnly, filters); ok {
		return platform, true
	}
	if platform, ok := matchInsteonType(node, bsOnly, filters); ok {
		return platform, true
	}
	restricted := map[string]Filter{
		PlatformBinarySensor: {UOM: binarySensorUOMs, States: binarySensorStates},
	}
	if platform, ok := matchUOM(node, bsOnly, restricted); ok {
		return platform, true
	}
	if platform, ok := matchStatesInUOM(node, bsOnly, restricted); ok {
		return platform, true
	}
	return "", false
}

// matchNodeDef matches the 5.x firmware node_def_id, the most reliable type
// tag a node can carry.
func matchNodeDef(node *isy.Node, platforms []string, filters map[string]Filter) (string, bool) {
	if node.NodeDefID == "" {
		// pre-5.0 firmware most likely
		return "", false
	}
	for _, platform := range platforms {
		for _, id := range filters[platform].NodeDefID {
			if node.NodeDefID == id {
				return platform, true
			}
		}
	}
	return "", false
}

// matchInsteonType matches the dotted legacy type string. Only Insteon
// devices have one; node servers and other families never match here.
func matchInsteonType(node *isy.Node, platforms []string, filters map[string]Filter) (string, bool) {
	if node.Protocol != isy.ProtoInsteon || node.Type == "" {
		return "", false
	}
	for _, platform := range platforms {
		for _, prefix := range filters[platform].InsteonType {
			if !strings.HasPrefix(node.Type, prefix) {
				continue
			}
			// FanLinc exposes its light module as the sub-node with
			// address suffix 1. Not needed on 5.x firmware, which uses
			// node defs instead.
			if platform == PlatformFan && strings.HasSuffix(node.Address, "1") {
				return PlatformLight, true
			}
			return platform, true
		}
	}
	return "", false
}

// matchUOM intersects the node's uom token set with a platform's accepted
// tokens. Firmware that reports a single uom id lands here.
func matchUOM(node *isy.Node, platforms []string, filters map[string]Filter) (string, bool) {
	nodeUOM := lowerSet(node.UOM)
	if nodeUOM == nil {
		// scenes and groups have no uom
		return "", false
	}
	for _, platform := range platforms {
		for _, uom := range filters[platform].UOM {
			if nodeUOM[uom] {
				return platform, true
			}
		}
	}
	return "", false
}

// matchStatesInUOM passes when the node's uom tokens are exactly a
// platform's human-readable state vocabulary, nothing more and nothing less.
func matchStatesInUOM(node *isy.Node, platforms []string, filters map[string]Filter) (string, bool) {
	nodeUOM := lowerSet(node.UOM)
	if nodeUOM == nil {
		return "", false
	}
	for _, platform := range platforms {
		states := filters[platform].States
		if len(states) == 0 || len(states) != len(nodeUOM) {
			continue
		}
		all := true
		for _, s := range states {
			if !nodeUOM[s] {
				all = false
				break
			}
		}
		if all {
			return platform, true
		}
	}
	return "", false
}

func lowerSet(tokens []string) map[string]bool {
	if tokens == nil {
		return nil
	}
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[strings.ToLower(t)] = true
	}
	return set
}
