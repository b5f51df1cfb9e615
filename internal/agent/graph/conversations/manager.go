package conversations

import (
	"context"
	"strings"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"

	"github.com/cloudwego/eino/schema"
)

// MessagesManager assembles oracle context from conversation history and
// records completed turns back to the repository.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	intentMaxTurns   int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		intentMaxTurns:   config.Intent.MaxTurns,
	}
}

// IntentContext renders the most recent turns as the history block of the
// intent classification prompt.
func (cm *MessagesManager) IntentContext(messages []*schema.Message) string {
	recent := trimTail(messages, cm.intentMaxTurns)

	var b strings.Builder
	for _, msg := range recent {
		if msg == nil || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			b.WriteString("user: " + msg.Content + "\n")
		case schema.Assistant:
			b.WriteString("assistant: " + msg.Content + "\n")
		}
	}
	return b.String()
}

// FormatTranscript serializes the full history for attachment to an
// escalation ticket.
func FormatTranscript(messages []*schema.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		if msg == nil || msg.Content == "" {
			continue
		}
		b.WriteString(string(msg.Role) + ": " + msg.Content + "\n")
	}
	return b.String()
}

// SaveTurn appends the user message and the assistant response for a
// completed turn. Only the orchestrator boundary calls this; stage handlers
// never touch history.
func (cm *MessagesManager) SaveTurn(ctx context.Context, sessionID, userMessage, assistantResponse string) error {
	if err := cm.conversationRepo.AddMessage(ctx, sessionID, schema.UserMessage(userMessage)); err != nil {
		return err
	}
	return cm.conversationRepo.AddMessage(ctx, sessionID, schema.AssistantMessage(assistantResponse, nil))
}

// LoadHistory returns the stored messages for a session.
func (cm *MessagesManager) LoadHistory(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return history.Messages, nil
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
