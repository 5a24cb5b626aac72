package messaging

import (
	"time"

	"github.com/Aidin1998/usersapi/pkg/models"
	"github.com/google/uuid"
)

// MessageType defines the type of message being sent
type MessageType string

const (
	MsgUserCreated MessageType = "user.created"
	MsgUserUpdated MessageType = "user.updated"
	MsgUserDeleted MessageType = "user.deleted"
)

// BaseMessage contains common fields for all messages
type BaseMessage struct {
	MessageID string      `json:"message_id"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Version   string      `json:"version"`
	Source    string      `json:"source"`
}

// UserEventMessage is emitted after every successful write to the users store.
// User is nil for deletions.
type UserEventMessage struct {
	BaseMessage
	UserID string       `json:"user_id"`
	User   *models.User `json:"user,omitempty"`
}

// NewUserEvent builds an event for the given user id.
func NewUserEvent(msgType MessageType, userID string, user *models.User) *UserEventMessage {
	return &UserEventMessage{
		BaseMessage: BaseMessage{
			MessageID: uuid.NewString(),
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			Version:   "1.0",
			Source:    "usersapi",
		},
		UserID: userID,
		User:   user,
	}
}
