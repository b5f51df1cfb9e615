// Package routers holds the conditional edge decisions of the dialogue graph.
// A router inspects the conversation state after a stage ran and names the
// stage to execute next; returning the stage that just ran suspends the turn
// until the user's next message.
package routers

import (
	"strings"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
)

// RouterFunc picks the next stage from the current conversation state.
type RouterFunc func(state *model.ConversationState) model.Stage

// To returns a router that always picks the given stage. Used both for
// unconditional continuations and, pointed at the current stage, to suspend.
func To(stage model.Stage) RouterFunc {
	return func(*model.ConversationState) model.Stage {
		return stage
	}
}

// AfterIntent routes on the classified invoice type. An unrecognised intent
// loops back to classification, which suspends the turn so the clarification
// question reaches the user.
func AfterIntent(state *model.ConversationState) model.Stage {
	switch state.InvoiceType {
	case model.InvoiceTypePO:
		return model.StageAskPODetails
	case model.InvoiceTypeNonPO:
		return model.StageAskNonPODetails
	case model.InvoiceTypeGreeting:
		return model.StageGreeting
	default:
		return model.StageIdentifyIntent
	}
}

// AfterPOValidation continues to payload generation once both identifiers are
// present, otherwise suspends at collection so the user can retry.
func AfterPOValidation(state *model.ConversationState) model.Stage {
	if state.PONumber == "" || state.InvoiceNumber == "" {
		return model.StageCollectPODetails
	}
	return model.StageGeneratePayload
}

// AfterNonPOValidation continues to payload generation once at least one
// invoice entry was extracted, otherwise suspends at collection.
func AfterNonPOValidation(state *model.ConversationState) model.Stage {
	if state.Payload == nil || len(state.Payload.Invoices) == 0 {
		return model.StageCollectNonPODetails
	}
	return model.StageGeneratePayload
}

// AfterSAPCall routes on the lookup outcome. Only a response carrying at
// least one invoice row counts as found.
func AfterSAPCall(state *model.ConversationState) model.Stage {
	if state.APIResponse != nil && len(state.APIResponse.InvoiceDetails) > 0 {
		return model.StageExplainStatus
	}
	return model.StageInvoiceNotFound
}

// AfterSatisfaction reads the user's yes/no answer. Any reply containing
// "yes" counts as satisfied; everything else starts the escalation path.
func AfterSatisfaction(state *model.ConversationState) model.Stage {
	if strings.Contains(strings.ToLower(state.UserQuery), "yes") {
		return model.StageEndConversation
	}
	return model.StageCollectFeedback
}
