package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type ConversationRepository interface {
	// AddMessage appends a message to the conversation history for the session
	AddMessage(ctx context.Context, sessionID string, message *schema.Message) error

	// LoadHistory retrieves the conversation history for a session
	LoadHistory(ctx context.Context, sessionID string) (*ConversationHistory, error)

	// ClearHistory removes all conversation history for a session
	ClearHistory(ctx context.Context, sessionID string) error

	// GetMessageCount returns the number of messages in the conversation
	GetMessageCount(ctx context.Context, sessionID string) (int, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	SessionID string
	Messages  []*schema.Message
}

// StateRepository persists ConversationState between turns. LoadState returns
// (nil, nil) when the session has no stored state yet.
type StateRepository interface {
	LoadState(ctx context.Context, sessionID string) (*ConversationState, error)
	SaveState(ctx context.Context, state *ConversationState) error
	ClearState(ctx context.Context, sessionID string) error
}

// AnalyticsRepository is the long-term memory for completed turns. An empty
// sessionID fetches the records of every known session.
type AnalyticsRepository interface {
	SaveRecord(ctx context.Context, record *ConversationRecord) error
	FetchRecords(ctx context.Context, sessionID string) ([]*ConversationRecord, error)
}
