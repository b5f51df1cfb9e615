package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/conversations"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/parsers"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/prompts"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	"github.com/yogeshdhome/Invoice-Assistant/internal/observability"
	logx "github.com/yogeshdhome/Invoice-Assistant/pkg/logger"
)

// Adapter is the extraction oracle: it renders the typed prompt for each
// operation, invokes the chat model, and parses the free-text reply into the
// operation's result type. Parse failures surface as model.ErrMalformed, and
// no oracle misbehaviour ever escapes as a panic.
type Adapter struct {
	cm        einomodel.BaseChatModel
	modelName string
	mm        *conversations.MessagesManager
}

func NewAdapter(cm einomodel.BaseChatModel, modelName string, mm *conversations.MessagesManager) *Adapter {
	return &Adapter{cm: cm, modelName: modelName, mm: mm}
}

// ClassifyIntent resolves the query to PO, NON_PO, GREETING or UNKNOWN.
func (a *Adapter) ClassifyIntent(ctx context.Context, query string, history []*schema.Message) (model.InvoiceType, error) {
	prompt, err := prompts.RenderIntent(ctx, prompts.IntentPromptInput{
		UserQuery:           query,
		ConversationHistory: a.mm.IntentContext(history),
	})
	if err != nil {
		return model.InvoiceTypeUnknown, err
	}

	content, err := a.generate(ctx, "classify_intent", prompt)
	if err != nil {
		return model.InvoiceTypeUnknown, err
	}
	return parsers.ParseIntentLabel(content), nil
}

// ExtractPODetails pulls the PO field set out of the query.
func (a *Adapter) ExtractPODetails(ctx context.Context, query string) (*model.PODetails, error) {
	prompt, err := prompts.RenderPODetails(ctx, prompts.ExtractionPromptInput{UserQuery: query})
	if err != nil {
		return nil, err
	}

	content, err := a.generate(ctx, "extract_po_details", prompt)
	if err != nil {
		return nil, err
	}
	details, err := parsers.ParsePODetails(content)
	if err != nil {
		a.recordMalformed("extract_po_details", err)
		return nil, err
	}
	return details, nil
}

// ExtractNonPODetails pulls the multi-invoice Non-PO field set out of the query.
func (a *Adapter) ExtractNonPODetails(ctx context.Context, query string) (*model.StatusRequest, error) {
	prompt, err := prompts.RenderNonPODetails(ctx, prompts.ExtractionPromptInput{UserQuery: query})
	if err != nil {
		return nil, err
	}

	content, err := a.generate(ctx, "extract_non_po_details", prompt)
	if err != nil {
		return nil, err
	}
	req, err := parsers.ParseNonPODetails(content)
	if err != nil {
		a.recordMalformed("extract_non_po_details", err)
		return nil, err
	}
	return req, nil
}

// ExtractContactDetails pulls the escalation contact fields out of the query.
func (a *Adapter) ExtractContactDetails(ctx context.Context, query string) (*model.ContactDetails, error) {
	prompt, err := prompts.RenderContactDetails(ctx, prompts.ExtractionPromptInput{UserQuery: query})
	if err != nil {
		return nil, err
	}

	content, err := a.generate(ctx, "extract_contact_details", prompt)
	if err != nil {
		return nil, err
	}
	details, err := parsers.ParseContactDetails(content)
	if err != nil {
		a.recordMalformed("extract_contact_details", err)
		return nil, err
	}
	return details, nil
}

// generate runs one chat model call and returns the raw reply content.
func (a *Adapter) generate(ctx context.Context, operation, prompt string) (string, error) {
	start := time.Now()
	out, err := a.cm.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		observability.RecordOracleCall(operation, "error", time.Since(start))
		logx.Error().Err(err).Str("operation", operation).Msg("oracle call failed")
		return "", fmt.Errorf("oracle %s: %w", operation, err)
	}
	observability.RecordOracleCall(operation, "success", time.Since(start))

	if out == nil {
		return "", fmt.Errorf("oracle %s: empty reply", operation)
	}
	a.logUsage(operation, out)
	return out.Content, nil
}

// logUsage computes and logs the USD cost of a call when usage is reported.
func (a *Adapter) logUsage(operation string, out *schema.Message) {
	if out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	usage := out.ResponseMeta.Usage
	pricing := model.ResolvePricing(a.modelName)
	inC, outC, totalC := model.ComputeCost(usage, pricing)
	logx.Debug().
		Str("operation", operation).
		Str("model", a.modelName).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("oracle usage")
}

func (a *Adapter) recordMalformed(operation string, err error) {
	if errors.Is(err, model.ErrMalformed) {
		observability.RecordMalformedOutput(operation)
	}
	logx.Warn().Err(err).Str("operation", operation).Msg("oracle output failed schema parse")
}

var _ model.ExtractionOracle = (*Adapter)(nil)
