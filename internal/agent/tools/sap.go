package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	logx "github.com/yogeshdhome/Invoice-Assistant/pkg/logger"
)

// ===================================
// SAP Invoice Status Lookup
// ===================================

// SAPClient calls the SAP S4 invoice status endpoint. A 404 or an empty
// invoice_details list maps to the not-found signal (nil response, nil error).
type SAPClient struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewSAPClient(cfg model.SAPConfig) *SAPClient {
	return &SAPClient{
		baseURL: cfg.APIURL,
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

func (c *SAPClient) LookupInvoiceStatus(ctx context.Context, req *model.StatusRequest) (*model.StatusResponse, error) {
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal status request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invoice-status", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("APIKey", c.apiKey)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call sap api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sap api status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read sap response: %w", err)
	}
	var out model.StatusResponse
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode sap response: %w", err)
	}
	if len(out.InvoiceDetails) == 0 {
		return nil, nil
	}
	return &out, nil
}

var _ model.InvoiceStatusClient = (*SAPClient)(nil)

// MockSAPClient mimics the SAP lookup without a backend: PO enquiries come
// back paid, Non-PO enquiries pending approval, anything else not found. Used
// when no SAP endpoint is configured.
type MockSAPClient struct{}

func NewMockSAPClient() *MockSAPClient {
	return &MockSAPClient{}
}

func (c *MockSAPClient) LookupInvoiceStatus(ctx context.Context, req *model.StatusRequest) (*model.StatusResponse, error) {
	if req == nil || len(req.Invoices) == 0 {
		return nil, nil
	}
	logx.Debug().Str("invoice_type", string(req.Type)).Int("invoices", len(req.Invoices)).Msg("mock SAP lookup")

	switch req.Type {
	case model.InvoiceTypePO:
		details := make([]model.InvoiceDetail, 0, len(req.Invoices))
		for _, inv := range req.Invoices {
			details = append(details, model.InvoiceDetail{
				PONumber:          inv.PONumber,
				InvoiceNumber:     inv.InvoiceNumber,
				StatusCode:        "PAID",
				StatusDescription: "The invoice has been paid in full.",
			})
		}
		return &model.StatusResponse{InvoiceDetails: details}, nil
	case model.InvoiceTypeNonPO:
		details := make([]model.InvoiceDetail, 0, len(req.Invoices))
		for _, inv := range req.Invoices {
			details = append(details, model.InvoiceDetail{
				ACRNumber:           inv.ACRNumber,
				InvoiceNumber:       inv.InvoiceNumber,
				InvoiceDocumentDate: inv.InvoiceDocumentDate,
				StatusCode:          "PENDING_APPROVAL",
				StatusDescription:   "The invoice is pending approval.",
			})
		}
		return &model.StatusResponse{InvoiceDetails: details}, nil
	}
	return nil, nil
}

var _ model.InvoiceStatusClient = (*MockSAPClient)(nil)
