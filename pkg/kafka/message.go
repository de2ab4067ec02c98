package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kirill-oleynik/signup-service/pkg/models"
)

// EventUserRegistered is the event type published after a successful sign up.
const EventUserRegistered = "user.registered"

// UserRegisteredMessage is the payload published to the user-events topic
// after a user record is created. It intentionally carries no credential
// material.
type UserRegisteredMessage struct {
	Event     string    `json:"event"`
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`

	// Tracing
	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`
}

// NewUserRegisteredMessage builds the event payload for a created user.
func NewUserRegisteredMessage(user models.User) *UserRegisteredMessage {
	return &UserRegisteredMessage{
		Event:     EventUserRegistered,
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the message for the wire.
func (m *UserRegisteredMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ParseUserRegisteredMessage parses a raw Kafka message payload.
func ParseUserRegisteredMessage(data []byte) (*UserRegisteredMessage, error) {
	var msg UserRegisteredMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
