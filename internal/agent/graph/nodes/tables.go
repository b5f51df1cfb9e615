package nodes

import (
	"fmt"
	"strings"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
)

// RenderStatusTable formats lookup results as a markdown table, one row per
// invoice in result order. PO and Non-PO enquiries carry different columns;
// Non-PO rows fall back to the invoice number when no ACR number is present.
func RenderStatusTable(invoiceType model.InvoiceType, details []model.InvoiceDetail) string {
	var b strings.Builder

	if invoiceType == model.InvoiceTypePO {
		b.WriteString("| Sr# | PO Number | Invoice Number | Status |\n|---|---|---|---|")
		for i, row := range details {
			b.WriteString(fmt.Sprintf("\n| %d | %s | %s | %s: %s |",
				i+1, row.PONumber, row.InvoiceNumber, row.StatusCode, row.StatusDescription))
		}
		return b.String()
	}

	b.WriteString("| Sr# | ACR/Invoice Number | Invoice Document Date | Status |\n|---|---|---|---|")
	for i, row := range details {
		number := row.ACRNumber
		if number == "" {
			number = row.InvoiceNumber
		}
		b.WriteString(fmt.Sprintf("\n| %d | %s | %s | %s: %s |",
			i+1, number, row.InvoiceDocumentDate, row.StatusCode, row.StatusDescription))
	}
	return b.String()
}
