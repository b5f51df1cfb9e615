package parsers

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	logx "github.com/yogeshdhome/Invoice-Assistant/pkg/logger"
)

// basic safety limits to avoid pathological oracle outputs
const (
	maxContentLen = 64 * 1024 // 64KB
)

// extractJSONObject strips markdown code fences and surrounding prose, leaving
// the outermost JSON object the oracle produced. Models routinely wrap JSON in
// ```json fences or lead with a sentence.
func extractJSONObject(content string) (string, bool) {
	s := strings.TrimSpace(content)
	if len(s) > maxContentLen {
		s = s[:maxContentLen]
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// poEnvelope tolerates both shapes the oracle is known to produce for PO
// extraction: the flat field set and the same fields wrapped in an invoices
// list.
type poEnvelope struct {
	PONumber      string            `json:"po_number"`
	InvoiceNumber string            `json:"invoice_number"`
	CheckAllForPO bool              `json:"check_all_for_po"`
	Invoices      []model.PODetails `json:"invoices"`
}

// ParsePODetails parses the oracle's PO extraction output. A reply that is not
// a JSON object is ErrMalformed; missing fields are left empty for the caller
// to validate. Never panics.
func ParsePODetails(content string) (details *model.PODetails, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "details_parser").Msgf("panic recovered: %v", r)
			details = nil
			err = fmt.Errorf("%w: parser panic", model.ErrMalformed)
		}
	}()

	raw, ok := extractJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in oracle reply", model.ErrMalformed)
	}

	var env poEnvelope
	if uerr := sonic.UnmarshalString(raw, &env); uerr != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformed, uerr)
	}

	out := &model.PODetails{
		PONumber:      strings.TrimSpace(env.PONumber),
		InvoiceNumber: strings.TrimSpace(env.InvoiceNumber),
		CheckAllForPO: env.CheckAllForPO,
	}
	if out.PONumber == "" && out.InvoiceNumber == "" && len(env.Invoices) > 0 {
		first := env.Invoices[0]
		out.PONumber = strings.TrimSpace(first.PONumber)
		out.InvoiceNumber = strings.TrimSpace(first.InvoiceNumber)
		out.CheckAllForPO = first.CheckAllForPO
	}
	return out, nil
}

type nonPOEnvelope struct {
	Invoices []struct {
		ACRNumber           string `json:"acr_number"`
		InvoiceNumber       string `json:"invoice_number"`
		InvoiceDocumentDate string `json:"invoice_document_date"`
	} `json:"invoices"`
}

// ParseNonPODetails parses the oracle's Non-PO extraction output into a status
// request. An empty invoice list is ErrMalformed; lists beyond the per-turn
// cap are truncated in input order.
func ParseNonPODetails(content string) (req *model.StatusRequest, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "details_parser").Msgf("panic recovered: %v", r)
			req = nil
			err = fmt.Errorf("%w: parser panic", model.ErrMalformed)
		}
	}()

	raw, ok := extractJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in oracle reply", model.ErrMalformed)
	}

	var env nonPOEnvelope
	if uerr := sonic.UnmarshalString(raw, &env); uerr != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformed, uerr)
	}
	if len(env.Invoices) == 0 {
		return nil, fmt.Errorf("%w: no invoices extracted", model.ErrMalformed)
	}
	if len(env.Invoices) > model.MaxInvoicesPerTurn {
		logx.Warn().
			Str("component", "details_parser").
			Int("extracted", len(env.Invoices)).
			Int("cap", model.MaxInvoicesPerTurn).
			Msg("truncating extracted invoice list to per-turn cap")
		env.Invoices = env.Invoices[:model.MaxInvoicesPerTurn]
	}

	out := &model.StatusRequest{
		Type:     model.InvoiceTypeNonPO,
		Invoices: make([]model.InvoiceQuery, 0, len(env.Invoices)),
	}
	for _, inv := range env.Invoices {
		out.Invoices = append(out.Invoices, model.InvoiceQuery{
			ACRNumber:           strings.TrimSpace(inv.ACRNumber),
			InvoiceNumber:       strings.TrimSpace(inv.InvoiceNumber),
			InvoiceDocumentDate: strings.TrimSpace(inv.InvoiceDocumentDate),
		})
	}
	return out, nil
}

type contactEnvelope struct {
	EmailID      string `json:"email_id"`
	Email        string `json:"email"`
	VendorNumber string `json:"vendor_number"`
}

// ParseContactDetails parses the oracle's escalation-contact extraction
// output. Both fields missing is ErrMalformed.
func ParseContactDetails(content string) (details *model.ContactDetails, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "details_parser").Msgf("panic recovered: %v", r)
			details = nil
			err = fmt.Errorf("%w: parser panic", model.ErrMalformed)
		}
	}()

	raw, ok := extractJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in oracle reply", model.ErrMalformed)
	}

	var env contactEnvelope
	if uerr := sonic.UnmarshalString(raw, &env); uerr != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformed, uerr)
	}

	email := strings.TrimSpace(env.EmailID)
	if email == "" {
		email = strings.TrimSpace(env.Email)
	}
	vendor := strings.TrimSpace(env.VendorNumber)
	if email == "" && vendor == "" {
		return nil, fmt.Errorf("%w: no contact fields extracted", model.ErrMalformed)
	}
	return &model.ContactDetails{EmailID: email, VendorNumber: vendor}, nil
}
