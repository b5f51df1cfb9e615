package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/intent_prompt.txt
var intentPrompt string

//go:embed template/po_details_prompt.txt
var poDetailsPrompt string

//go:embed template/non_po_details_prompt.txt
var nonPODetailsPrompt string

//go:embed template/contact_details_prompt.txt
var contactDetailsPrompt string

// IntentPromptInput names the fields the intent prompt consumes, keeping the
// state machine decoupled from the template wording.
type IntentPromptInput struct {
	UserQuery           string
	ConversationHistory string
}

// ExtractionPromptInput names the fields the extraction prompts consume.
type ExtractionPromptInput struct {
	UserQuery string
}

// RenderIntent renders the intent classification prompt via the Eino prompt
// component. Known tokens are substituted with a replacer so the JSON braces
// in templates never collide with format directives.
func RenderIntent(ctx context.Context, in IntentPromptInput) (string, error) {
	content := strings.NewReplacer(
		"{user_query}", in.UserQuery,
		"{conversation_history}", in.ConversationHistory,
	).Replace(intentPrompt)
	return renderThroughCallbacks(ctx, content)
}

// RenderPODetails renders the PO field-extraction prompt.
func RenderPODetails(ctx context.Context, in ExtractionPromptInput) (string, error) {
	content := strings.NewReplacer("{user_query}", in.UserQuery).Replace(poDetailsPrompt)
	return renderThroughCallbacks(ctx, content)
}

// RenderNonPODetails renders the Non-PO field-extraction prompt.
func RenderNonPODetails(ctx context.Context, in ExtractionPromptInput) (string, error) {
	content := strings.NewReplacer("{user_query}", in.UserQuery).Replace(nonPODetailsPrompt)
	return renderThroughCallbacks(ctx, content)
}

// RenderContactDetails renders the escalation-contact extraction prompt.
func RenderContactDetails(ctx context.Context, in ExtractionPromptInput) (string, error) {
	content := strings.NewReplacer("{user_query}", in.UserQuery).Replace(contactDetailsPrompt)
	return renderThroughCallbacks(ctx, content)
}

// renderThroughCallbacks wraps the already-substituted content in an Eino
// prompt component using a messages placeholder, so prompt callbacks fire and
// the raw braces in the content are left untouched.
func renderThroughCallbacks(ctx context.Context, content string) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}
