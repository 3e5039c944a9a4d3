package isy

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RESTClient talks to the controller's REST interface. The event feed is
// handled separately by EventClient (see events.go).
type RESTClient struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	events   *EventClient
	logger   *zap.Logger
}

func CreateRESTClient(host string, port uint, useHTTPS bool, username, password string,
	timeout time.Duration, logger *zap.Logger) *RESTClient {
	scheme := "http"
	if useHTTPS {
		scheme = "https"
	}
	return &RESTClient{
		baseURL:  fmt.Sprintf("%s://%s:%d", scheme, host, port),
		username: username,
		password: password,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (c *RESTClient) Open() error {
	// /rest/time is the cheapest authenticated endpoint; use it as a probe.
	_, err := c.get("/rest/time")
	return err
}

func (c *RESTClient) Close() error {
	if c.events != nil {
		c.events.Close()
		c.events = nil
	}
	return nil
}

func (c *RESTClient) Nodes() ([]NodeWithPath, error) {
	body, err := c.get("/rest/nodes")
	if err != nil {
		return nil, err
	}
	return parseNodes(body)
}

func (c *RESTClient) Programs() (*Program, error) {
	body, err := c.get("/rest/programs?subfolders=true")
	if err != nil {
		return nil, err
	}
	return parsePrograms(body)
}

func (c *RESTClient) TurnOn(address string) error {
	return c.cmd(fmt.Sprintf("/rest/nodes/%s/cmd/DON", address))
}

func (c *RESTClient) TurnOnLevel(address string, level uint8) error {
	return c.cmd(fmt.Sprintf("/rest/nodes/%s/cmd/DON/%d", address, level))
}

func (c *RESTClient) TurnOff(address string) error {
	return c.cmd(fmt.Sprintf("/rest/nodes/%s/cmd/DOF", address))
}

func (c *RESTClient) RunThen(programID string) error {
	return c.cmd(fmt.Sprintf("/rest/programs/%s/runThen", programID))
}

func (c *RESTClient) RunElse(programID string) error {
	return c.cmd(fmt.Sprintf("/rest/programs/%s/runElse", programID))
}

func (c *RESTClient) Subscribe(onEvent func(Event)) error {
	ec, err := CreateEventClient(c.baseURL, c.username, c.password, onEvent, c.logger)
	if err != nil {
		return err
	}
	c.events = ec
	return nil
}

func (c *RESTClient) get(path string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hub returned status %d for %s", resp.StatusCode, path)
	}
	return io.ReadAll(resp.Body)
}

func (c *RESTClient) cmd(path string) error {
	_, err := c.get(path)
	return err
}

// REST payload decoding

type xmlNodes struct {
	Folders []xmlFolder `xml:"folder"`
	Nodes   []xmlNode   `xml:"node"`
	Groups  []xmlNode   `xml:"group"`
}

type xmlFolder struct {
	Address string `xml:"address"`
	Name    string `xml:"name"`
	Parent  string `xml:"parent"`
}

type xmlNode struct {
	NodeDefID string        `xml:"nodeDefId,attr"`
	Address   string        `xml:"address"`
	Name      string        `xml:"name"`
	Parent    string        `xml:"parent"`
	Type      string        `xml:"type"`
	Enabled   string        `xml:"enabled"`
	Family    string        `xml:"family"`
	Props     []xmlProperty `xml:"property"`
}

type xmlProperty struct {
	ID    string `xml:"id,attr"`
	Value string `xml:"value,attr"`
	UOM   string `xml:"uom,attr"`
}

func parseNodes(body []byte) ([]NodeWithPath, error) {
	var payload xmlNodes
	if err := xml.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	paths := folderPaths(payload.Folders)

	var result []NodeWithPath
	for i := range payload.Nodes {
		n := decodeNode(&payload.Nodes[i], nodeProtocol(&payload.Nodes[i]))
		result = append(result, NodeWithPath{Path: paths[payload.Nodes[i].Parent], Node: n})
	}
	for i := range payload.Groups {
		n := decodeNode(&payload.Groups[i], ProtoGroup)
		result = append(result, NodeWithPath{Path: paths[payload.Groups[i].Parent], Node: n})
	}
	return result, nil
}

func decodeNode(xn *xmlNode, protocol string) *Node {
	n := &Node{
		Address:   xn.Address,
		Name:      xn.Name,
		Protocol:  protocol,
		NodeDefID: xn.NodeDefID,
		Type:      xn.Type,
		Status:    ValueUnknown,
		Enabled:   xn.Enabled != "false",
	}
	for _, p := range xn.Props {
		if p.ID != "ST" {
			continue
		}
		if v, err := strconv.Atoi(p.Value); err == nil {
			n.Status = v
		}
		if p.UOM != "" {
			n.UOM = strings.Split(p.UOM, "/")
		}
	}
	return n
}

// nodeProtocol maps the REST family code to a protocol tag. Insteon nodes
// either omit the family element or report family 1.
func nodeProtocol(xn *xmlNode) string {
	switch xn.Family {
	case "", "1":
		return ProtoInsteon
	case "6":
		return ProtoGroup
	default:
		return "family-" + xn.Family
	}
}

func folderPaths(folders []xmlFolder) map[string]string {
	byAddress := make(map[string]xmlFolder, len(folders))
	for _, f := range folders {
		byAddress[f.Address] = f
	}
	paths := make(map[string]string, len(folders))
	for _, f := range folders {
		segments := []string{f.Name}
		parent := f.Parent
		for depth := 0; parent != "" && depth < 16; depth++ {
			pf, ok := byAddress[parent]
			if !ok {
				break
			}
			segments = append([]string{pf.Name}, segments...)
			parent = pf.Parent
		}
		paths[f.Address] = strings.Join(segments, "/")
	}
	return paths
}

type xmlPrograms struct {
	Programs []xmlProgram `xml:"program"`
}

type xmlProgram struct {
	ID       string `xml:"id,attr"`
	Folder   string `xml:"folder,attr"`
	Status   string `xml:"status,attr"`
	Enabled  string `xml:"enabled,attr"`
	ParentID string `xml:"parentId,attr"`
	Name     string `xml:"name"`
}

func parsePrograms(body []byte) (*Program, error) {
	var payload xmlPrograms
	if err := xml.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	byID := make(map[string]*Program, len(payload.Programs))
	for _, xp := range payload.Programs {
		protocol := ProtoProgram
		if xp.Folder == "true" {
			protocol = ProtoFolder
		}
		byID[xp.ID] = &Program{
			ID:       xp.ID,
			Name:     xp.Name,
			Protocol: protocol,
			Status:   xp.Status == "true",
			Enabled:  xp.Enabled != "false",
		}
	}

	root := &Program{ID: "0001", Name: "My Programs", Protocol: ProtoFolder}
	for _, xp := range payload.Programs {
		p := byID[xp.ID]
		if p.ID == root.ID {
			continue
		}
		if parent, ok := byID[xp.ParentID]; ok {
			parent.Children = append(parent.Children, p)
		} else {
			root.Children = append(root.Children, p)
		}
	}
	if tree, ok := byID[root.ID]; ok {
		tree.Children = append(tree.Children, root.Children...)
		return tree, nil
	}
	if len(root.Children) == 0 && len(payload.Programs) > 0 {
		return nil, errors.New("program tree has no root folder")
	}
	return root, nil
}
