package store

// Request slots. Each slot admits at most one pending request at a time; an
// enqueue while one is pending overwrites it (last request wins).
const (
	// SlotChat is the chat composer slot. The payload carries the conversation
	// UID and the text captured while offline.
	SlotChat = "chat"
	// SlotAnalysis is the single image-analysis slot. The payload carries the
	// image reference captured while offline.
	SlotAnalysis = "analysis"
)

// PendingRequest is a durable marker of a submission made while offline,
// holding enough information to resume automatically on reconnect.
type PendingRequest struct {
	Slot      string
	Payload   []byte // JSON-encoded slot-specific payload
	CreatedTs int64
}
