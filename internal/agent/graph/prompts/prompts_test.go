package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderIntent(t *testing.T) {
	out, err := RenderIntent(context.Background(), IntentPromptInput{
		UserQuery:           "where is my PO invoice",
		ConversationHistory: "user: hi\nassistant: hello\n",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `The user query is: "where is my PO invoice"`)
	assert.Contains(t, out, "user: hi")
	assert.NotContains(t, out, "{user_query}")
	assert.NotContains(t, out, "{conversation_history}")
}

func TestRenderPODetailsKeepsJSONBraces(t *testing.T) {
	out, err := RenderPODetails(context.Background(), ExtractionPromptInput{
		UserQuery: "PO 1234567890 invoice 0987654321",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `User query: "PO 1234567890 invoice 0987654321"`)
	// the example JSON object in the template must survive rendering intact
	assert.Contains(t, out, `"check_all_for_po": false`)
}

func TestRenderNonPODetails(t *testing.T) {
	out, err := RenderNonPODetails(context.Background(), ExtractionPromptInput{UserQuery: "ACR 123"})
	require.NoError(t, err)
	assert.Contains(t, out, `User query: "ACR 123"`)
	assert.Contains(t, out, `"invoice_document_date"`)
}

func TestRenderContactDetails(t *testing.T) {
	out, err := RenderContactDetails(context.Background(), ExtractionPromptInput{
		UserQuery: "my email is user@example.com",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `User message: "my email is user@example.com"`)
	assert.Contains(t, out, `"vendor_number"`)
}
