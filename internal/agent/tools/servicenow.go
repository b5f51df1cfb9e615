package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	logx "github.com/yogeshdhome/Invoice-Assistant/pkg/logger"
)

// ===================================
// ServiceNow Ticketing
// ===================================

// ServiceNowClient opens interaction tickets through the ServiceNow table
// API using basic auth.
type ServiceNowClient struct {
	instanceURL string
	username    string
	password    string
	httpc       *http.Client
}

func NewServiceNowClient(cfg model.ServiceNowConfig) *ServiceNowClient {
	return &ServiceNowClient{
		instanceURL: cfg.InstanceURL,
		username:    cfg.Username,
		password:    cfg.Password,
		httpc:       &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

type serviceNowTicketBody struct {
	Email        string `json:"email"`
	VendorNumber string `json:"vendor_number"`
	ShortDesc    string `json:"short_description"`
	Description  string `json:"description"`
}

type serviceNowTicketResult struct {
	Result struct {
		Number string `json:"number"`
	} `json:"result"`
}

func (c *ServiceNowClient) CreateTicket(ctx context.Context, req model.TicketRequest) (string, error) {
	body, err := sonic.Marshal(serviceNowTicketBody{
		Email:        req.Email,
		VendorNumber: req.VendorNumber,
		ShortDesc:    req.Reason,
		Description:  req.Conversation,
	})
	if err != nil {
		return "", fmt.Errorf("marshal ticket body: %w", err)
	}

	url := c.instanceURL + "/api/now/table/interaction"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ticket request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.username, c.password)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call servicenow: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("servicenow status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read servicenow response: %w", err)
	}
	var out serviceNowTicketResult
	if err := sonic.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode servicenow response: %w", err)
	}
	if out.Result.Number == "" {
		return "", fmt.Errorf("servicenow returned no ticket number")
	}
	return out.Result.Number, nil
}

var _ model.TicketClient = (*ServiceNowClient)(nil)

// MockServiceNowClient issues INC-prefixed ticket numbers without a backend.
// Used when no ServiceNow instance is configured.
type MockServiceNowClient struct{}

func NewMockServiceNowClient() *MockServiceNowClient {
	return &MockServiceNowClient{}
}

func (c *MockServiceNowClient) CreateTicket(ctx context.Context, req model.TicketRequest) (string, error) {
	if req.Email == "" || req.VendorNumber == "" {
		return "", fmt.Errorf("email and vendor number are required")
	}
	ticket := "INC" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	logx.Debug().
		Str("email", req.Email).
		Str("vendor_number", req.VendorNumber).
		Str("ticket", ticket).
		Msg("mock ServiceNow ticket created")
	return ticket, nil
}

var _ model.TicketClient = (*MockServiceNowClient)(nil)
