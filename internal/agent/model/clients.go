package model

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/schema"
)

// ErrMalformed reports that the oracle's output could not be parsed against
// the expected schema. It is the only failure the extraction operations
// surface besides transport errors; a malformed reply never panics.
var ErrMalformed = errors.New("oracle output malformed")

// ExtractionOracle turns free text into structured data. Implementations wrap
// a language model; stage handlers only ever see this contract.
type ExtractionOracle interface {
	// ClassifyIntent resolves the query to one of the known invoice intents,
	// defaulting to InvoiceTypeUnknown when no label is recognised.
	ClassifyIntent(ctx context.Context, query string, history []*schema.Message) (InvoiceType, error)

	// ExtractPODetails pulls {po_number, invoice_number, check_all_for_po}
	// out of the query. Returns ErrMalformed when parsing fails.
	ExtractPODetails(ctx context.Context, query string) (*PODetails, error)

	// ExtractNonPODetails pulls a list of up to MaxInvoicesPerTurn Non-PO
	// invoice entries out of the query. An empty list is ErrMalformed.
	ExtractNonPODetails(ctx context.Context, query string) (*StatusRequest, error)

	// ExtractContactDetails pulls the escalation email and vendor number out
	// of the query. Returns ErrMalformed when parsing fails.
	ExtractContactDetails(ctx context.Context, query string) (*ContactDetails, error)
}

// InvoiceStatusClient is the SAP status lookup collaborator. A nil response
// with a nil error means the lookup found nothing.
type InvoiceStatusClient interface {
	LookupInvoiceStatus(ctx context.Context, req *StatusRequest) (*StatusResponse, error)
}

// TicketClient is the ServiceNow ticketing collaborator.
type TicketClient interface {
	CreateTicket(ctx context.Context, req TicketRequest) (string, error)
}
