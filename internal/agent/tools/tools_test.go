package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
)

func TestSAPClientLookup(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/invoice-status", r.URL.Path)
			assert.Equal(t, "secret", r.Header.Get("APIKey"))

			var req model.StatusRequest
			require.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, model.InvoiceTypePO, req.Type)

			resp := model.StatusResponse{InvoiceDetails: []model.InvoiceDetail{
				{PONumber: "1234567890", StatusCode: "PAID", StatusDescription: "Paid in full."},
			}}
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, sonic.ConfigDefault.NewEncoder(w).Encode(resp))
		}))
		defer srv.Close()

		client := NewSAPClient(model.SAPConfig{APIURL: srv.URL, APIKey: "secret", TimeoutSeconds: 5})
		resp, err := client.LookupInvoiceStatus(context.Background(), &model.StatusRequest{
			Type:     model.InvoiceTypePO,
			Invoices: []model.InvoiceQuery{{PONumber: "1234567890"}},
		})
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "PAID", resp.InvoiceDetails[0].StatusCode)
	})

	t.Run("404 means not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewSAPClient(model.SAPConfig{APIURL: srv.URL, TimeoutSeconds: 5})
		resp, err := client.LookupInvoiceStatus(context.Background(), &model.StatusRequest{})
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("empty details means not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"invoice_details": []}`))
		}))
		defer srv.Close()

		client := NewSAPClient(model.SAPConfig{APIURL: srv.URL, TimeoutSeconds: 5})
		resp, err := client.LookupInvoiceStatus(context.Background(), &model.StatusRequest{})
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("server error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewSAPClient(model.SAPConfig{APIURL: srv.URL, TimeoutSeconds: 5})
		_, err := client.LookupInvoiceStatus(context.Background(), &model.StatusRequest{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})
}

func TestMockSAPClient(t *testing.T) {
	client := NewMockSAPClient()

	t.Run("po invoices come back paid", func(t *testing.T) {
		resp, err := client.LookupInvoiceStatus(context.Background(), &model.StatusRequest{
			Type: model.InvoiceTypePO,
			Invoices: []model.InvoiceQuery{
				{PONumber: "1", InvoiceNumber: "A"},
				{PONumber: "2", InvoiceNumber: "B"},
			},
		})
		require.NoError(t, err)
		require.NotNil(t, resp)
		require.Len(t, resp.InvoiceDetails, 2)
		assert.Equal(t, "PAID", resp.InvoiceDetails[0].StatusCode)
		assert.Equal(t, "1", resp.InvoiceDetails[0].PONumber)
	})

	t.Run("non po invoices pending approval", func(t *testing.T) {
		resp, err := client.LookupInvoiceStatus(context.Background(), &model.StatusRequest{
			Type:     model.InvoiceTypeNonPO,
			Invoices: []model.InvoiceQuery{{ACRNumber: "ACR1", InvoiceDocumentDate: "2024-01-01"}},
		})
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "PENDING_APPROVAL", resp.InvoiceDetails[0].StatusCode)
		assert.Equal(t, "ACR1", resp.InvoiceDetails[0].ACRNumber)
	})

	t.Run("empty request not found", func(t *testing.T) {
		resp, err := client.LookupInvoiceStatus(context.Background(), &model.StatusRequest{})
		require.NoError(t, err)
		assert.Nil(t, resp)
	})
}

func TestServiceNowClientCreateTicket(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/now/table/interaction", r.URL.Path)
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "svc-user", user)
			assert.Equal(t, "svc-pass", pass)

			var body map[string]string
			require.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "user@example.com", body["email"])

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"result": {"number": "INC0042"}}`))
		}))
		defer srv.Close()

		client := NewServiceNowClient(model.ServiceNowConfig{
			InstanceURL: srv.URL, Username: "svc-user", Password: "svc-pass", TimeoutSeconds: 5,
		})
		ticket, err := client.CreateTicket(context.Background(), model.TicketRequest{
			Email: "user@example.com", VendorNumber: "V1", Reason: "unhappy", Conversation: "transcript",
		})
		require.NoError(t, err)
		assert.Equal(t, "INC0042", ticket)
	})

	t.Run("missing ticket number is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"result": {}}`))
		}))
		defer srv.Close()

		client := NewServiceNowClient(model.ServiceNowConfig{InstanceURL: srv.URL, TimeoutSeconds: 5})
		_, err := client.CreateTicket(context.Background(), model.TicketRequest{Email: "a@b.c", VendorNumber: "V1"})
		require.Error(t, err)
	})

	t.Run("http failure surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		client := NewServiceNowClient(model.ServiceNowConfig{InstanceURL: srv.URL, TimeoutSeconds: 5})
		_, err := client.CreateTicket(context.Background(), model.TicketRequest{Email: "a@b.c", VendorNumber: "V1"})
		require.Error(t, err)
	})
}

func TestMockServiceNowClient(t *testing.T) {
	client := NewMockServiceNowClient()

	t.Run("issues inc ticket", func(t *testing.T) {
		ticket, err := client.CreateTicket(context.Background(), model.TicketRequest{
			Email: "user@example.com", VendorNumber: "V1",
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(ticket, "INC"))
		assert.Len(t, ticket, 11)
	})

	t.Run("requires contact fields", func(t *testing.T) {
		_, err := client.CreateTicket(context.Background(), model.TicketRequest{Email: "user@example.com"})
		require.Error(t, err)

		_, err = client.CreateTicket(context.Background(), model.TicketRequest{VendorNumber: "V1"})
		require.Error(t, err)
	})
}
