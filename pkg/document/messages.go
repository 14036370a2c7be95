package document

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Wire message type discriminators. One JSON object per websocket frame.
const (
	TypeContentUpdate = "content-update"
	TypeContentChange = "content-change"
	TypeStatus        = "status"
	TypeConnections   = "connections"
)

// ContentUpdate carries a full document snapshot to clients.
type ContentUpdate struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// StatusMessage greets a newly connected client with the current
// connection count.
type StatusMessage struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	Connections int    `json:"connections"`
}

// ConnectionsMessage announces a membership change to every client.
type ConnectionsMessage struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// ClientMessage is an inbound frame from a client. Content is a full
// document replacement, never a delta.
type ClientMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

const clientMessageSchema = `{
	"type": "object",
	"required": ["type"],
	"properties": {
		"type": {"type": "string"},
		"content": {"type": "string"}
	}
}`

var clientSchema *gojsonschema.Schema

func init() {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(clientMessageSchema))
	if err != nil {
		panic(fmt.Sprintf("failed to compile client message schema: %v", err))
	}
	clientSchema = schema
}

// ParseClientMessage validates and decodes one inbound frame. A malformed
// frame yields an error; callers log and drop it without closing the
// connection.
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	result, err := clientSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON frame: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("frame failed validation: %s", result.Errors()[0])
	}

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return &msg, nil
}
