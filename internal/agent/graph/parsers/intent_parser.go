package parsers

import (
	"strings"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
)

// maxLabelLen bounds the oracle reply considered for label matching. Replies
// longer than this are truncated before matching, never rejected.
const maxLabelLen = 4 * 1024

// ParseIntentLabel resolves a free-text oracle reply to an invoice intent by
// case-insensitive substring matching. NON_PO must be checked before PO: "PO"
// is a substring of every "NON_PO" wording, so the reverse order would
// misclassify Non-PO enquiries. Unrecognised replies resolve to UNKNOWN.
func ParseIntentLabel(content string) model.InvoiceType {
	if len(content) > maxLabelLen {
		content = content[:maxLabelLen]
	}
	label := strings.ToUpper(content)

	switch {
	case strings.Contains(label, "NON_PO"),
		strings.Contains(label, "NON PO"),
		strings.Contains(label, "NON-PO"):
		return model.InvoiceTypeNonPO
	case strings.Contains(label, "PO"):
		return model.InvoiceTypePO
	case strings.Contains(label, "GREETING"):
		return model.InvoiceTypeGreeting
	default:
		return model.InvoiceTypeUnknown
	}
}
