package model

import (
	"github.com/cloudwego/eino/schema"
)

// Stage identifies a node in the dialogue graph. The set is closed: the graph
// builder validates every edge against it at startup, so a typo in a stage name
// fails construction instead of surfacing as a runtime lookup miss.
type Stage string

const (
	StageGreeting            Stage = "greeting"
	StageIdentifyIntent      Stage = "identify_intent"
	StageAskPODetails        Stage = "ask_po_invoice_details"
	StageAskNonPODetails     Stage = "ask_non_po_invoice_details"
	StageCollectPODetails    Stage = "collect_and_validate_po_details"
	StageCollectNonPODetails Stage = "collect_and_validate_non_po_details"
	StageGeneratePayload     Stage = "generate_json_payload"
	StageCallSAPAPI          Stage = "call_sap_api"
	StageExplainStatus       Stage = "explain_invoice_status"
	StageInvoiceNotFound     Stage = "handle_invoice_not_found"
	StageAskSatisfaction     Stage = "ask_for_satisfaction"
	StageCollectFeedback     Stage = "collect_feedback_for_ticket"
	StageCreateTicket        Stage = "create_servicenow_ticket"
	StageEndConversation     Stage = "end_conversation"
)

// String returns the stage name.
func (s Stage) String() string {
	return string(s)
}

// InvoiceType is the classification result for a user query.
type InvoiceType string

const (
	InvoiceTypeUnset    InvoiceType = ""
	InvoiceTypePO       InvoiceType = "PO"
	InvoiceTypeNonPO    InvoiceType = "NON_PO"
	InvoiceTypeGreeting InvoiceType = "GREETING"
	InvoiceTypeUnknown  InvoiceType = "UNKNOWN"
)

// ConversationState is the record threaded through every stage of a turn.
// Exactly one instance exists per session and the assistant serializes turns,
// so handlers may mutate it without additional locking. History is owned by
// the orchestrator boundary: stage handlers read it but never append.
type ConversationState struct {
	SessionID           string            `json:"session_id"`
	History             []*schema.Message `json:"conversation_history"`
	UserQuery           string            `json:"user_query"`
	InvoiceType         InvoiceType       `json:"invoice_type,omitempty"`
	PONumber            string            `json:"po_number,omitempty"`
	InvoiceNumber       string            `json:"invoice_number,omitempty"`
	CheckAllForPO       *bool             `json:"check_all_for_po,omitempty"`
	ACRNumber           string            `json:"acr_number,omitempty"`
	InvoiceDocumentDate string            `json:"invoice_document_date,omitempty"`
	Payload             *StatusRequest    `json:"json_payload,omitempty"`
	APIResponse         *StatusResponse   `json:"api_response,omitempty"`
	IsSatisfied         *bool             `json:"is_satisfied,omitempty"`
	EmailID             string            `json:"email_id,omitempty"`
	VendorNumber        string            `json:"vendor_number,omitempty"`
	ServiceNowTicket    string            `json:"service_now_ticket,omitempty"`
	FinalResponse       string            `json:"final_response,omitempty"`

	// CurrentStage is the stage the turn suspended at, persisted between turns
	// so the next user message resumes the graph at the right place. Empty
	// means the next turn starts fresh at the entry stage.
	CurrentStage Stage `json:"current_stage,omitempty"`
}

// NewConversationState returns a fresh state for a session's first turn.
func NewConversationState(sessionID string) *ConversationState {
	return &ConversationState{
		SessionID: sessionID,
		History:   []*schema.Message{},
	}
}

// Respond records user-facing text for the current turn. Stages executed later
// in the same turn accumulate rather than overwrite, so a status table followed
// by a satisfaction prompt both reach the user.
func (s *ConversationState) Respond(text string) {
	if text == "" {
		return
	}
	if s.FinalResponse == "" {
		s.FinalResponse = text
		return
	}
	s.FinalResponse += "\n\n" + text
}

// ResetFlow clears every field the dialogue accumulated so the next turn
// starts a new enquiry. Session identity, history and the last created ticket
// survive the reset.
func (s *ConversationState) ResetFlow() {
	s.InvoiceType = InvoiceTypeUnset
	s.PONumber = ""
	s.InvoiceNumber = ""
	s.CheckAllForPO = nil
	s.ACRNumber = ""
	s.InvoiceDocumentDate = ""
	s.Payload = nil
	s.APIResponse = nil
	s.IsSatisfied = nil
	s.EmailID = ""
	s.VendorNumber = ""
	s.CurrentStage = ""
}
