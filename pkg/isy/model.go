package isy

// Protocol family tags as reported by the controller.
const (
	ProtoInsteon = "insteon"
	ProtoGroup   = "group"
	ProtoProgram = "program"
	ProtoFolder  = "folder"
)

// ValueUnknown marks a node status that has not been reported yet.
const ValueUnknown = -1

// Node is a device or sub-device reported by the controller. Everything
// except Address and Name is optional: which attributes are present depends
// on the firmware version and the device family. Matchers must treat an
// empty NodeDefID/Type and a nil UOM as "not reported".
type Node struct {
	Address   string
	Name      string
	Protocol  string
	NodeDefID string
	Type      string
	UOM       []string
	Status    int
	Enabled   bool
}

// NodeWithPath pairs a node with its folder placement on the controller.
type NodeWithPath struct {
	Path string
	Node *Node
}

// Program is an entry of the controller's program tree. Folders carry
// ProtoFolder, runnable programs ProtoProgram.
type Program struct {
	ID       string
	Name     string
	Protocol string
	Status   bool
	Enabled  bool
	Children []*Program
}

// GetByName returns the direct child with the given name, or nil.
func (p *Program) GetByName(name string) *Program {
	if p == nil {
		return nil
	}
	for _, child := range p.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Event is a state change pushed by the controller's event feed.
type Event struct {
	Address string
	Control string
	Value   int
}

// HubClient is the surface of the controller the bridge depends on.
// RESTClient implements it against a real controller, TestHubClient against
// canned data.
type HubClient interface {
	Open() error
	Close() error

	Nodes() ([]NodeWithPath, error)
	Programs() (*Program, error)

	TurnOn(address string) error
	TurnOnLevel(address string, level uint8) error
	TurnOff(address string) error
	RunThen(programID string) error
	RunElse(programID string) error

	Subscribe(onEvent func(Event)) error
}
