package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeDetection represents a completed pseudonymization operation
	EventTypeDetection EventType = "detection"
	// EventTypeQuota represents a storage quota status change
	EventTypeQuota EventType = "quota"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// DetectionEvent announces a completed operation. It carries counts and rule
// IDs only, never matched values or pseudonyms.
type DetectionEvent struct {
	RequestID        string         `json:"request_id"`
	SourceContext    string         `json:"source_context,omitempty"`
	TriggeredRuleIDs []string       `json:"triggered_rule_ids"`
	ReplacementCount int            `json:"replacement_count"`
	LegalCounts      map[string]int `json:"legal_counts"`
	ProcessingMS     int64          `json:"processing_ms"`
}

// QuotaEvent announces a storage usage snapshot
type QuotaEvent struct {
	UsedBytes    int64   `json:"used_bytes"`
	TotalBytes   int64   `json:"total_bytes"`
	Percent      float64 `json:"percent"`
	Warning      bool    `json:"warning"`
	Critical     bool    `json:"critical"`
	EvictedCount int     `json:"evicted_count,omitempty"`
}

// SystemStatusEvent represents system status information
type SystemStatusEvent struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	TotalOperations  int64  `json:"total_operations"`
	ActiveRules      int    `json:"active_rules"`
	ConnectedClients int    `json:"connected_clients"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected", "disconnected"
	ClientID string `json:"client_id"`
	ClientIP string `json:"client_ip"`
	Message  string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SubscriptionRequest represents a client subscription request
type SubscriptionRequest struct {
	Events []EventType `json:"events"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID           string
	Conn         *websocket.Conn
	Send         chan Event
	Subscription *SubscriptionRequest
	ConnectedAt  time.Time
	LastPing     time.Time
	IP           string
}
