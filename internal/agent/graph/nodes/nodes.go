package nodes

import (
	"context"
	"fmt"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/conversations"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	"github.com/yogeshdhome/Invoice-Assistant/internal/observability"
	logx "github.com/yogeshdhome/Invoice-Assistant/pkg/logger"
)

// HandlerFunc is one dialogue stage: it reads and mutates the conversation
// state and records any user-facing text through state.Respond. Handlers never
// append to history; that is the orchestrator boundary's job.
type HandlerFunc func(ctx context.Context, state *model.ConversationState) error

// NewGreetingHandler greets the user and explains the assistant's capabilities.
func NewGreetingHandler() HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		state.Respond(GreetingMessage)
		return nil
	}
}

// NewIdentifyIntentHandler classifies the user's query. An oracle fault is
// treated as an unclear intent rather than failing the turn.
func NewIdentifyIntentHandler(oracle model.ExtractionOracle) HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		intent, err := oracle.ClassifyIntent(ctx, state.UserQuery, state.History)
		if err != nil {
			logx.Warn().Err(err).Str("session_id", state.SessionID).
				Msg("intent classification failed, treating as unknown")
			intent = model.InvoiceTypeUnknown
		}
		state.InvoiceType = intent
		logx.Debug().Str("session_id", state.SessionID).
			Str("invoice_type", string(intent)).Msg("intent identified")

		if intent == model.InvoiceTypeUnknown {
			state.Respond(ClarifyIntentMessage)
		}
		return nil
	}
}

// NewAskPODetailsHandler prompts for the PO enquiry fields.
func NewAskPODetailsHandler() HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		state.Respond(AskPODetailsMessage)
		return nil
	}
}

// NewAskNonPODetailsHandler prompts for the Non-PO enquiry fields.
func NewAskNonPODetailsHandler() HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		state.Respond(AskNonPODetailsMessage)
		return nil
	}
}

// NewCollectPODetailsHandler extracts the PO field set from the current
// query. On a malformed reply the previously extracted identifiers are
// cleared so stale values can never pass validation.
func NewCollectPODetailsHandler(oracle model.ExtractionOracle) HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		details, err := oracle.ExtractPODetails(ctx, state.UserQuery)
		if err != nil {
			state.PONumber = ""
			state.InvoiceNumber = ""
			state.CheckAllForPO = nil
			state.Respond(RetryPODetailsMessage)
			return nil
		}

		state.PONumber = details.PONumber
		state.InvoiceNumber = details.InvoiceNumber
		state.CheckAllForPO = &details.CheckAllForPO

		if state.PONumber == "" || state.InvoiceNumber == "" {
			state.Respond(MissingPODetailsMessage)
		}
		return nil
	}
}

// NewCollectNonPODetailsHandler extracts the Non-PO invoice list from the
// current query.
func NewCollectNonPODetailsHandler(oracle model.ExtractionOracle) HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		req, err := oracle.ExtractNonPODetails(ctx, state.UserQuery)
		if err != nil {
			state.Payload = nil
			state.Respond(RetryNonPODetailsMessage)
			return nil
		}
		state.Payload = req
		return nil
	}
}

// NewGeneratePayloadHandler builds the status lookup request body. PO
// enquiries wrap the single extracted entry; Non-PO enquiries carry the
// already-validated multi-invoice structure through unchanged.
func NewGeneratePayloadHandler() HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		switch state.InvoiceType {
		case model.InvoiceTypePO:
			checkAll := state.CheckAllForPO != nil && *state.CheckAllForPO
			state.Payload = &model.StatusRequest{
				Type: model.InvoiceTypePO,
				Invoices: []model.InvoiceQuery{{
					PONumber:      state.PONumber,
					InvoiceNumber: state.InvoiceNumber,
					CheckAllForPO: checkAll,
				}},
			}
		case model.InvoiceTypeNonPO:
			if state.Payload != nil {
				state.Payload.Type = model.InvoiceTypeNonPO
			}
		}
		return nil
	}
}

// NewCallSAPHandler invokes the status lookup. A missing payload and a
// collaborator fault both map to the not-found path; the lookup never fails
// the turn.
func NewCallSAPHandler(invoices model.InvoiceStatusClient) HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		if state.Payload == nil {
			state.APIResponse = nil
			observability.RecordLookup("not_found")
			return nil
		}

		resp, err := invoices.LookupInvoiceStatus(ctx, state.Payload)
		if err != nil {
			logx.Error().Err(err).Str("session_id", state.SessionID).
				Msg("invoice status lookup failed, taking not-found path")
			observability.RecordLookup("error")
			state.APIResponse = nil
			return nil
		}
		state.APIResponse = resp

		if resp == nil || len(resp.InvoiceDetails) == 0 {
			observability.RecordLookup("not_found")
		} else {
			observability.RecordLookup("found")
		}
		return nil
	}
}

// NewExplainStatusHandler renders the lookup result as a table.
func NewExplainStatusHandler() HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		var details []model.InvoiceDetail
		if state.APIResponse != nil {
			details = state.APIResponse.InvoiceDetails
		}
		table := RenderStatusTable(state.InvoiceType, details)
		state.Respond(StatusTableIntro + "\n\n" + table)
		return nil
	}
}

// NewInvoiceNotFoundHandler reports that the lookup found nothing.
func NewInvoiceNotFoundHandler() HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		state.Respond(InvoiceNotFoundMessage)
		return nil
	}
}

// NewAskSatisfactionHandler asks whether the provided status answered the
// user's question.
func NewAskSatisfactionHandler() HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		state.Respond(AskSatisfactionMessage)
		return nil
	}
}

// NewCollectFeedbackHandler extracts the escalation contact fields from the
// dissatisfied user's reply. A malformed reply leaves the fields empty; the
// ticket stage refuses in that case instead of opening a partial ticket.
func NewCollectFeedbackHandler(oracle model.ExtractionOracle) HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		notSatisfied := false
		state.IsSatisfied = &notSatisfied

		details, err := oracle.ExtractContactDetails(ctx, state.UserQuery)
		if err != nil {
			logx.Warn().Err(err).Str("session_id", state.SessionID).
				Msg("contact extraction failed, ticket creation will refuse")
			return nil
		}
		state.EmailID = details.EmailID
		state.VendorNumber = details.VendorNumber
		state.Respond(FeedbackCollectedMessage)
		return nil
	}
}

// NewCreateTicketHandler opens a ServiceNow interaction for the dissatisfied
// user. Both contact fields are hard preconditions: without them the
// collaborator is never invoked.
func NewCreateTicketHandler(tickets model.TicketClient) HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		if state.EmailID == "" || state.VendorNumber == "" {
			observability.RecordTicket("refused")
			state.Respond(CannotCreateTicketMessage)
			return nil
		}

		ticket, err := tickets.CreateTicket(ctx, model.TicketRequest{
			Email:        state.EmailID,
			VendorNumber: state.VendorNumber,
			Reason:       TicketReason,
			Conversation: conversations.FormatTranscript(state.History),
		})
		if err != nil {
			logx.Error().Err(err).Str("session_id", state.SessionID).
				Msg("ticket creation failed")
			observability.RecordTicket("error")
			state.Respond(TicketCreationFailedMessage)
			return nil
		}

		state.ServiceNowTicket = ticket
		observability.RecordTicket("created")
		state.Respond(fmt.Sprintf(
			"I have created a ServiceNow ticket for you. The ticket number is %s. "+
				"A team member will follow up with you via email.", ticket))
		return nil
	}
}

// NewEndConversationHandler says goodbye.
func NewEndConversationHandler() HandlerFunc {
	return func(ctx context.Context, state *model.ConversationState) error {
		satisfied := true
		state.IsSatisfied = &satisfied
		state.Respond(GoodbyeMessage)
		return nil
	}
}
