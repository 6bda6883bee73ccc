package store

import "github.com/pkg/errors"

// Role is the author of a chat message. It is a closed set; every consumer
// switches over it exhaustively.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ParseRole validates a raw role value coming from the wire or the database.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUser:
		return RoleUser, nil
	case RoleModel:
		return RoleModel, nil
	default:
		return "", errors.Errorf("unknown message role %q", raw)
	}
}

// Message is a single turn in a conversation. Messages are immutable once
// created; ordering within a conversation is append-only and significant.
type Message struct {
	ID             int64
	ConversationID int32
	Role           Role
	Content        string
	CreatedTs      int64
}

type FindMessage struct {
	ConversationID *int32
	ID             *int64
}

type DeleteMessage struct {
	ID int64
}
