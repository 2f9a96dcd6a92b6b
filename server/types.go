package server

import (
	"time"

	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/style"
)

const (
	// MaxClients is the maximum number of concurrent WebSocket clients
	MaxClients = 100
	// MaxClientMessageQueueSize is the size of per-client message queues
	MaxClientMessageQueueSize = 64
	// ShutdownTimeout is how long Stop waits for goroutines
	ShutdownTimeout = 10 * time.Second
)

// ServerState is the server lifecycle state
type ServerState int32

const (
	ServerStateRunning ServerState = iota
	ServerStateDraining
	ServerStateStopped
)

func (s ServerState) String() string {
	switch s {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StylesMessage pushes a published Style Map to WebSocket clients
type StylesMessage struct {
	Type       string          `json:"type"` // "styles"
	Generation uint64          `json:"generation"`
	Styles     *style.StyleMap `json:"styles"`
}

// LabelMessage answers a client's label request
type LabelMessage struct {
	Type     string `json:"type"` // "label"
	Edge     string `json:"edge"`
	EdgeType string `json:"edgeType"`
	Label    string `json:"label"`
}

// ClientMessage is a message sent by a WebSocket client
type ClientMessage struct {
	Type     string `json:"type"`               // "ping", "label"
	Edge     string `json:"edge,omitempty"`     // rendered edge id, for "label"
	EdgeType string `json:"edgeType,omitempty"` // optional, derived from the registry when empty
}

// LabelResponse is the body of GET /api/styles/label
type LabelResponse struct {
	Edge     string `json:"edge"`
	EdgeType string `json:"edgeType"`
	Label    string `json:"label"`
}

// PreferencesResponse is the body of GET /api/preferences
type PreferencesResponse struct {
	State string               `json:"state"`
	Edges []graph.EdgeOverride `json:"edges"`
}
