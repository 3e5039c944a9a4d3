package isy

import "errors"

// TestHubClient replays a canned controller inventory. Used by the actor
// tests and the classifier tests so nothing needs a live hub.
type TestHubClient struct {
	NodeList    []NodeWithPath
	ProgramTree *Program

	OnCalls      []string
	LevelCalls   map[string]uint8
	OffCalls     []string
	ThenCalls    []string
	ElseCalls    []string
	eventHandler func(Event)
}

func CreateTestHubClient() *TestHubClient {
	return &TestHubClient{
		NodeList:    TestNodes(),
		ProgramTree: TestPrograms(),
	}
}

func (c *TestHubClient) Open() error  { return nil }
func (c *TestHubClient) Close() error { return nil }

func (c *TestHubClient) Nodes() ([]NodeWithPath, error) {
	if c.NodeList == nil {
		return nil, errors.New("no nodes loaded")
	}
	return c.NodeList, nil
}

func (c *TestHubClient) Programs() (*Program, error) {
	return c.ProgramTree, nil
}

func (c *TestHubClient) TurnOn(address string) error {
	c.OnCalls = append(c.OnCalls, address)
	return nil
}

func (c *TestHubClient) TurnOnLevel(address string, level uint8) error {
	if c.LevelCalls == nil {
		c.LevelCalls = map[string]uint8{}
	}
	c.LevelCalls[address] = level
	return nil
}

func (c *TestHubClient) TurnOff(address string) error {
	c.OffCalls = append(c.OffCalls, address)
	return nil
}

func (c *TestHubClient) RunThen(programID string) error {
	c.ThenCalls = append(c.ThenCalls, programID)
	return nil
}

func (c *TestHubClient) RunElse(programID string) error {
	c.ElseCalls = append(c.ElseCalls, programID)
	return nil
}

func (c *TestHubClient) Subscribe(onEvent func(Event)) error {
	c.eventHandler = onEvent
	return nil
}

// PushEvent feeds a fake controller event to the subscriber.
func (c *TestHubClient) PushEvent(ev Event) {
	if c.eventHandler != nil {
		c.eventHandler(ev)
	}
}

// TestNodes covers one node per classification route: node-def matches,
// Insteon-type matches (including the FanLinc light sub-node), uom matches,
// a scene, ignored and sensor-flagged nodes, and one unsupported device.
func TestNodes() []NodeWithPath {
	return []NodeWithPath{
		{Path: "Living Room", Node: &Node{
			Address: "11 22 33 1", Name: "Ceiling Light", Protocol: ProtoInsteon,
			NodeDefID: "DimmerLampSwitch", Type: "1.32.65.0", Status: 255, Enabled: true,
		}},
		{Path: "Living Room", Node: &Node{
			Address: "11 22 34 1", Name: "Outlet", Protocol: ProtoInsteon,
			NodeDefID: "RelayLampSwitch", Type: "2.55.68.0", Status: 0, Enabled: true,
		}},
		{Path: "Bedroom", Node: &Node{
			Address: "22 33 44 2", Name: "Ceiling Fan", Protocol: ProtoInsteon,
			Type: "1.46.0.0", Status: 0, Enabled: true,
		}},
		{Path: "Bedroom", Node: &Node{
			Address: "22 33 44 1", Name: "Fan Light", Protocol: ProtoInsteon,
			Type: "1.46.0.0", Status: 0, Enabled: true,
		}},
		{Path: "Front Door", Node: &Node{
			Address: "33 44 55 1", Name: "Door Sensor", Protocol: ProtoInsteon,
			Type: "16.2.6.0", Status: 0, Enabled: true,
		}},
		{Path: "Garage", Node: &Node{
			Address: "44 55 66 1", Name: "Water sensor leak", Protocol: ProtoInsteon,
			UOM: []string{"78"}, Status: 0, Enabled: true,
		}},
		{Path: "Utility", Node: &Node{
			Address: "55 66 77 1", Name: "Power Meter", Protocol: ProtoInsteon,
			NodeDefID: "IMETER_SOLO", UOM: []string{"73"}, Status: 120, Enabled: true,
		}},
		{Path: "Front Door", Node: &Node{
			Address: "99 00 11 1", Name: "Deadbolt", Protocol: ProtoInsteon,
			UOM: []string{"11"}, Status: 255, Enabled: true,
		}},
		{Path: "Office", Node: &Node{
			Address: "99 00 22 1", Name: "Blinds", Protocol: ProtoInsteon,
			UOM: []string{"97"}, Status: 0, Enabled: true,
		}},
		{Path: "Scenes", Node: &Node{
			Address: "9001", Name: "Movie Night", Protocol: ProtoGroup, Status: 0, Enabled: true,
		}},
		{Path: "Attic {IGNORE ME}", Node: &Node{
			Address: "66 77 88 1", Name: "Old Relay", Protocol: ProtoInsteon,
			Type: "2.55.68.0", Status: 0, Enabled: true,
		}},
		{Path: "Workshop", Node: &Node{
			Address: "77 88 99 1", Name: "Mystery Module", Protocol: ProtoInsteon,
			Status: 0, Enabled: true,
		}},
	}
}

// TestPrograms builds a tree with one valid switch program entity, one
// entity missing its actions program, a lock entity, and one valid
// binary_sensor entity with no actions at all.
func TestPrograms() *Program {
	return &Program{
		ID: "0001", Name: "My Programs", Protocol: ProtoFolder,
		Children: []*Program{
			{
				ID: "0010", Name: "HA.switch", Protocol: ProtoFolder,
				Children: []*Program{
					{
						ID: "0011", Name: "Porch Heater", Protocol: ProtoFolder,
						Children: []*Program{
							{ID: "0012", Name: "status", Protocol: ProtoProgram, Enabled: true},
							{ID: "0013", Name: "actions", Protocol: ProtoProgram, Enabled: true},
						},
					},
					{
						ID: "0014", Name: "Broken Heater", Protocol: ProtoFolder,
						Children: []*Program{
							{ID: "0015", Name: "status", Protocol: ProtoProgram, Enabled: true},
						},
					},
				},
			},
			{
				ID: "0030", Name: "HA.lock", Protocol: ProtoFolder,
				Children: []*Program{
					{
						ID: "0031", Name: "Front Door", Protocol: ProtoFolder,
						Children: []*Program{
							{ID: "0032", Name: "status", Protocol: ProtoProgram, Enabled: true, Status: true},
							{ID: "0033", Name: "actions", Protocol: ProtoProgram, Enabled: true},
						},
					},
				},
			},
			{
				ID: "0020", Name: "HA.binary_sensor", Protocol: ProtoFolder,
				Children: []*Program{
					{
						ID: "0021", Name: "Mail Arrived", Protocol: ProtoFolder,
						Children: []*Program{
							{ID: "0022", Name: "status", Protocol: ProtoProgram, Enabled: true},
						},
					},
				},
			},
		},
	}
}
