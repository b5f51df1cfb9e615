package model

import "time"

// MaxInvoicesPerTurn bounds how many invoices a single enquiry may cover.
const MaxInvoicesPerTurn = 50

// InvoiceQuery is one invoice entry in a status lookup request. PO enquiries
// fill the PO fields, Non-PO enquiries the ACR/date fields.
type InvoiceQuery struct {
	PONumber            string `json:"po_number,omitempty"`
	InvoiceNumber       string `json:"invoice_number,omitempty"`
	CheckAllForPO       bool   `json:"check_all_for_po,omitempty"`
	ACRNumber           string `json:"acr_number,omitempty"`
	InvoiceDocumentDate string `json:"invoice_document_date,omitempty"`
}

// StatusRequest is the body sent to the SAP status lookup.
type StatusRequest struct {
	Type     InvoiceType    `json:"type"`
	Invoices []InvoiceQuery `json:"invoices"`
}

// InvoiceDetail is one row of a status lookup result. Row order is
// significant and preserved all the way to the rendered table.
type InvoiceDetail struct {
	PONumber            string `json:"po_number,omitempty"`
	InvoiceNumber       string `json:"invoice_number,omitempty"`
	ACRNumber           string `json:"acr_number,omitempty"`
	InvoiceDocumentDate string `json:"invoice_document_date,omitempty"`
	StatusCode          string `json:"status_code"`
	StatusDescription   string `json:"status_description"`
}

// StatusResponse is the SAP status lookup result. A nil *StatusResponse is
// the sole not-found signal.
type StatusResponse struct {
	InvoiceDetails []InvoiceDetail `json:"invoice_details"`
}

// PODetails is the field set extracted from a PO enquiry.
type PODetails struct {
	PONumber      string `json:"po_number"`
	InvoiceNumber string `json:"invoice_number"`
	CheckAllForPO bool   `json:"check_all_for_po"`
}

// ContactDetails is the escalation contact information extracted from the
// user's feedback message.
type ContactDetails struct {
	EmailID      string `json:"email_id"`
	VendorNumber string `json:"vendor_number"`
}

// TicketRequest carries everything the ticketing system needs to open an
// interaction on the user's behalf.
type TicketRequest struct {
	Email        string `json:"email"`
	VendorNumber string `json:"vendor_number"`
	Reason       string `json:"reason"`
	Conversation string `json:"conversation"`
}

// QueryInput is one inbound user message addressed to a session.
type QueryInput struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// TurnResult is what a completed turn hands back to the host.
type TurnResult struct {
	ResponseMessage  string `json:"response_message"`
	SessionID        string `json:"session_id"`
	ServiceNowTicket string `json:"service_now_ticket,omitempty"`
}

// ConversationRecord is one analytics entry in long-term memory.
type ConversationRecord struct {
	SessionID     string    `json:"session_id"`
	UserQuery     string    `json:"user_query"`
	AgentResponse string    `json:"agent_response"`
	FinalStatus   string    `json:"final_status,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
