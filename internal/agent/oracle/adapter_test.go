package oracle

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/conversations"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
)

// scriptedChatModel returns a canned reply for every Generate call.
type scriptedChatModel struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (s *scriptedChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	s.seen = input
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func (s *scriptedChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

type nopConversationRepo struct{}

func (nopConversationRepo) AddMessage(ctx context.Context, sessionID string, message *schema.Message) error {
	return nil
}

func (nopConversationRepo) LoadHistory(ctx context.Context, sessionID string) (*model.ConversationHistory, error) {
	return &model.ConversationHistory{SessionID: sessionID}, nil
}

func (nopConversationRepo) ClearHistory(ctx context.Context, sessionID string) error { return nil }

func (nopConversationRepo) GetMessageCount(ctx context.Context, sessionID string) (int, error) {
	return 0, nil
}

func newTestAdapter(cm einomodel.BaseChatModel) *Adapter {
	cfg := model.ConversationConfig{}
	cfg.Intent.MaxTurns = 5
	mm := conversations.NewMessagesManager(nopConversationRepo{}, cfg)
	return NewAdapter(cm, "gemini-2.5-flash", mm)
}

func TestClassifyIntent(t *testing.T) {
	t.Run("po label", func(t *testing.T) {
		cm := &scriptedChatModel{reply: "PO"}
		a := newTestAdapter(cm)

		intent, err := a.ClassifyIntent(context.Background(), "check my PO invoice", nil)
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceTypePO, intent)
		require.Len(t, cm.seen, 1)
		assert.Contains(t, cm.seen[0].Content, "check my PO invoice")
	})

	t.Run("history included in prompt", func(t *testing.T) {
		cm := &scriptedChatModel{reply: "NON_PO"}
		a := newTestAdapter(cm)

		history := []*schema.Message{schema.UserMessage("earlier question")}
		intent, err := a.ClassifyIntent(context.Background(), "and the other one?", history)
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceTypeNonPO, intent)
		assert.Contains(t, cm.seen[0].Content, "earlier question")
	})

	t.Run("model error surfaces", func(t *testing.T) {
		a := newTestAdapter(&scriptedChatModel{err: errors.New("quota exceeded")})

		intent, err := a.ClassifyIntent(context.Background(), "anything", nil)
		require.Error(t, err)
		assert.Equal(t, model.InvoiceTypeUnknown, intent)
	})
}

func TestExtractPODetails(t *testing.T) {
	t.Run("fenced json reply", func(t *testing.T) {
		cm := &scriptedChatModel{reply: "```json\n{\"po_number\": \"1234567890\", \"invoice_number\": \"9876543210\", \"check_all_for_po\": true}\n```"}
		a := newTestAdapter(cm)

		details, err := a.ExtractPODetails(context.Background(), "PO 1234567890 invoice 9876543210, all of them")
		require.NoError(t, err)
		assert.Equal(t, "1234567890", details.PONumber)
		assert.Equal(t, "9876543210", details.InvoiceNumber)
		assert.True(t, details.CheckAllForPO)
	})

	t.Run("malformed reply", func(t *testing.T) {
		a := newTestAdapter(&scriptedChatModel{reply: "I could not find any details"})

		_, err := a.ExtractPODetails(context.Background(), "gibberish")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrMalformed)
	})
}

func TestExtractNonPODetails(t *testing.T) {
	t.Run("invoice list", func(t *testing.T) {
		cm := &scriptedChatModel{reply: `{"invoices": [{"acr_number": "ACR1", "invoice_document_date": "2024-01-01"}]}`}
		a := newTestAdapter(cm)

		req, err := a.ExtractNonPODetails(context.Background(), "ACR1, 2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceTypeNonPO, req.Type)
		require.Len(t, req.Invoices, 1)
		assert.Equal(t, "ACR1", req.Invoices[0].ACRNumber)
	})

	t.Run("empty list is malformed", func(t *testing.T) {
		a := newTestAdapter(&scriptedChatModel{reply: `{"invoices": []}`})

		_, err := a.ExtractNonPODetails(context.Background(), "nothing useful")
		assert.ErrorIs(t, err, model.ErrMalformed)
	})
}

func TestExtractContactDetails(t *testing.T) {
	cm := &scriptedChatModel{reply: `{"email_id": "user@example.com", "vendor_number": "V42"}`}
	a := newTestAdapter(cm)

	details, err := a.ExtractContactDetails(context.Background(), "my email is user@example.com, vendor V42")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", details.EmailID)
	assert.Equal(t, "V42", details.VendorNumber)
}
