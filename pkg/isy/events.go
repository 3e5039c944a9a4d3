package isy

import (
	"encoding/base64"
	"encoding/xml"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventClient consumes the controller's websocket event feed and forwards
// status changes to a callback. It stops silently when Close is called;
// any other read error is logged and ends the feed.
type EventClient struct {
	conn    *websocket.Conn
	done    chan struct{}
	onEvent func(Event)
	logger  *zap.Logger
}

type xmlEvent struct {
	Control string `xml:"control"`
	Action  string `xml:"action"`
	Node    string `xml:"node"`
}

func CreateEventClient(baseURL, username, password string, onEvent func(Event), logger *zap.Logger) (*EventClient, error) {
	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/rest/subscribe"

	header := http.Header{}
	auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	header.Set("Authorization", "Basic "+auth)
	header.Set("Origin", baseURL)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		return nil, err
	}

	c := &EventClient{
		conn:    conn,
		done:    make(chan struct{}),
		onEvent: onEvent,
		logger:  logger,
	}
	go c.readLoop()
	return c, nil
}

func (c *EventClient) Close() {
	close(c.done)
	c.conn.Close()
}

func (c *EventClient) readLoop() {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Error("hub event feed closed", zap.Error(err))
			}
			return
		}
		if ev := parseEvent(message); ev != nil {
			c.onEvent(*ev)
		}
	}
}

// parseEvent decodes a single event frame. Only ST (status) control events
// carry node state; everything else (heartbeats, system busy) is dropped.
func parseEvent(message []byte) *Event {
	var xe xmlEvent
	if err := xml.Unmarshal(message, &xe); err != nil {
		return nil
	}
	if xe.Control != "ST" || xe.Node == "" {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(xe.Action))
	if err != nil {
		value = ValueUnknown
	}
	return &Event{
		Address: xe.Node,
		Control: xe.Control,
		Value:   value,
	}
}
