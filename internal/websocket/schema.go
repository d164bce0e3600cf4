package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError            Event = "error"
	EventPong             Event = "pong"
	EventSubscribed       Event = "subscribed"
	EventAttendanceMarked Event = "attendance_marked"
)

// SubscribedResponse confirms that the live feed of a class is attached.
type SubscribedResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
}

// AttendanceMessage carries one admission. Data is a JSON-encoded
// model.AttendanceEvent, forwarded as published.
type AttendanceMessage struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
