package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/nodes"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/routers"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
)

// scriptedOracle lets each test set the next oracle outcome between turns.
type scriptedOracle struct {
	intent     model.InvoiceType
	intentErr  error
	po         *model.PODetails
	poErr      error
	nonPO      *model.StatusRequest
	nonPOErr   error
	contact    *model.ContactDetails
	contactErr error
}

func (s *scriptedOracle) ClassifyIntent(ctx context.Context, query string, history []*schema.Message) (model.InvoiceType, error) {
	return s.intent, s.intentErr
}

func (s *scriptedOracle) ExtractPODetails(ctx context.Context, query string) (*model.PODetails, error) {
	return s.po, s.poErr
}

func (s *scriptedOracle) ExtractNonPODetails(ctx context.Context, query string) (*model.StatusRequest, error) {
	return s.nonPO, s.nonPOErr
}

func (s *scriptedOracle) ExtractContactDetails(ctx context.Context, query string) (*model.ContactDetails, error) {
	return s.contact, s.contactErr
}

type scriptedLookup struct {
	resp *model.StatusResponse
	err  error
}

func (s *scriptedLookup) LookupInvoiceStatus(ctx context.Context, req *model.StatusRequest) (*model.StatusResponse, error) {
	return s.resp, s.err
}

type scriptedTickets struct {
	ticket string
	err    error
}

func (s *scriptedTickets) CreateTicket(ctx context.Context, req model.TicketRequest) (string, error) {
	return s.ticket, s.err
}

func buildTestEngine(t *testing.T, oracle *scriptedOracle, lookup *scriptedLookup, tickets *scriptedTickets) *Engine {
	t.Helper()
	engine, err := BuildInvoiceGraph(Deps{
		Oracle:   oracle,
		Invoices: lookup,
		Tickets:  tickets,
	})
	require.NoError(t, err)
	return engine
}

func runTurn(t *testing.T, engine *Engine, state *model.ConversationState, query string) {
	t.Helper()
	state.UserQuery = query
	require.NoError(t, engine.RunTurn(context.Background(), state))
}

func TestPOHappyPath(t *testing.T) {
	oracle := &scriptedOracle{intent: model.InvoiceTypePO}
	lookup := &scriptedLookup{resp: &model.StatusResponse{InvoiceDetails: []model.InvoiceDetail{
		{PONumber: "1234567890", InvoiceNumber: "9876543210", StatusCode: "PAID", StatusDescription: "Paid in full."},
	}}}
	engine := buildTestEngine(t, oracle, lookup, &scriptedTickets{})
	state := model.NewConversationState("s1")

	// turn 1: intent identified, assistant asks for details and waits
	runTurn(t, engine, state, "I want to check the status of a PO invoice")
	assert.Equal(t, nodes.AskPODetailsMessage, state.FinalResponse)
	assert.Equal(t, model.StageAskPODetails, state.CurrentStage)

	// turn 2: details arrive, lookup runs, satisfaction question asked
	oracle.po = &model.PODetails{PONumber: "1234567890", InvoiceNumber: "9876543210"}
	runTurn(t, engine, state, "PO 1234567890, invoice 9876543210")
	assert.Contains(t, state.FinalResponse, nodes.StatusTableIntro)
	assert.Contains(t, state.FinalResponse, "| 1 | 1234567890 | 9876543210 | PAID: Paid in full. |")
	assert.Contains(t, state.FinalResponse, nodes.AskSatisfactionMessage)
	assert.Equal(t, model.StageAskSatisfaction, state.CurrentStage)

	// turn 3: satisfied, conversation ends and flow resets
	runTurn(t, engine, state, "yes, thanks")
	assert.Equal(t, nodes.GoodbyeMessage, state.FinalResponse)
	assert.Equal(t, model.Stage(""), state.CurrentStage)
	assert.Equal(t, model.InvoiceTypeUnset, state.InvoiceType)
	assert.Empty(t, state.PONumber)
}

func TestInvoiceNotFoundEndsEnquiry(t *testing.T) {
	oracle := &scriptedOracle{
		intent: model.InvoiceTypePO,
		po:     &model.PODetails{PONumber: "1111111111", InvoiceNumber: "2222222222"},
	}
	engine := buildTestEngine(t, oracle, &scriptedLookup{resp: nil}, &scriptedTickets{})
	state := model.NewConversationState("s1")

	runTurn(t, engine, state, "check my PO invoice")
	runTurn(t, engine, state, "PO 1111111111 invoice 2222222222")

	assert.Equal(t, nodes.InvoiceNotFoundMessage, state.FinalResponse)
	assert.Equal(t, model.Stage(""), state.CurrentStage)
}

func TestDissatisfiedUserGetsTicket(t *testing.T) {
	oracle := &scriptedOracle{
		intent: model.InvoiceTypeNonPO,
		nonPO: &model.StatusRequest{
			Type:     model.InvoiceTypeNonPO,
			Invoices: []model.InvoiceQuery{{ACRNumber: "ACR789", InvoiceDocumentDate: "2023-10-27"}},
		},
	}
	lookup := &scriptedLookup{resp: &model.StatusResponse{InvoiceDetails: []model.InvoiceDetail{
		{ACRNumber: "ACR789", InvoiceDocumentDate: "2023-10-27", StatusCode: "PENDING", StatusDescription: "Pending approval."},
	}}}
	tickets := &scriptedTickets{ticket: "INC0012345"}
	engine := buildTestEngine(t, oracle, lookup, tickets)
	state := model.NewConversationState("s1")

	runTurn(t, engine, state, "status of my non po invoice please")
	assert.Equal(t, model.StageAskNonPODetails, state.CurrentStage)

	runTurn(t, engine, state, "ACR789, 2023-10-27")
	assert.Contains(t, state.FinalResponse, "ACR789")
	assert.Equal(t, model.StageAskSatisfaction, state.CurrentStage)

	// dissatisfied answer starts the escalation path
	oracle.contact = &model.ContactDetails{EmailID: "user@example.com", VendorNumber: "V1"}
	runTurn(t, engine, state, "no, my email is user@example.com, vendor V1")
	assert.Contains(t, state.FinalResponse, nodes.FeedbackCollectedMessage)
	assert.Contains(t, state.FinalResponse, "INC0012345")
	assert.Equal(t, "INC0012345", state.ServiceNowTicket)
	assert.Equal(t, model.Stage(""), state.CurrentStage)
}

func TestUnknownIntentLoopsUntilClear(t *testing.T) {
	oracle := &scriptedOracle{intent: model.InvoiceTypeUnknown}
	engine := buildTestEngine(t, oracle, &scriptedLookup{}, &scriptedTickets{})
	state := model.NewConversationState("s1")

	runTurn(t, engine, state, "tell me about the weather")
	assert.Equal(t, nodes.ClarifyIntentMessage, state.FinalResponse)
	assert.Equal(t, model.StageIdentifyIntent, state.CurrentStage)

	// a second unclear message keeps the session at classification
	runTurn(t, engine, state, "hm?")
	assert.Equal(t, nodes.ClarifyIntentMessage, state.FinalResponse)
	assert.Equal(t, model.StageIdentifyIntent, state.CurrentStage)

	oracle.intent = model.InvoiceTypePO
	runTurn(t, engine, state, "PO invoices")
	assert.Equal(t, nodes.AskPODetailsMessage, state.FinalResponse)
	assert.Equal(t, model.StageAskPODetails, state.CurrentStage)
}

func TestGreetingEndsTurn(t *testing.T) {
	oracle := &scriptedOracle{intent: model.InvoiceTypeGreeting}
	engine := buildTestEngine(t, oracle, &scriptedLookup{}, &scriptedTickets{})
	state := model.NewConversationState("s1")

	runTurn(t, engine, state, "hello there")
	assert.Equal(t, nodes.GreetingMessage, state.FinalResponse)
	assert.Equal(t, model.Stage(""), state.CurrentStage)
}

func TestMalformedExtractionRetries(t *testing.T) {
	oracle := &scriptedOracle{intent: model.InvoiceTypePO, poErr: model.ErrMalformed}
	lookup := &scriptedLookup{resp: &model.StatusResponse{InvoiceDetails: []model.InvoiceDetail{
		{PONumber: "1234567890", InvoiceNumber: "9876543210", StatusCode: "PAID", StatusDescription: "Paid in full."},
	}}}
	engine := buildTestEngine(t, oracle, lookup, &scriptedTickets{})
	state := model.NewConversationState("s1")

	runTurn(t, engine, state, "PO invoice status")
	runTurn(t, engine, state, "garbled details")
	assert.Equal(t, nodes.RetryPODetailsMessage, state.FinalResponse)
	assert.Equal(t, model.StageCollectPODetails, state.CurrentStage)

	// the next message goes straight back into collection
	oracle.poErr = nil
	oracle.po = &model.PODetails{PONumber: "1234567890", InvoiceNumber: "9876543210"}
	runTurn(t, engine, state, "PO 1234567890, invoice 9876543210")
	assert.Contains(t, state.FinalResponse, nodes.StatusTableIntro)
	assert.Equal(t, model.StageAskSatisfaction, state.CurrentStage)
}

func TestLookupErrorTakesNotFoundPath(t *testing.T) {
	oracle := &scriptedOracle{
		intent: model.InvoiceTypePO,
		po:     &model.PODetails{PONumber: "1234567890", InvoiceNumber: "9876543210"},
	}
	engine := buildTestEngine(t, oracle, &scriptedLookup{err: errors.New("sap unavailable")}, &scriptedTickets{})
	state := model.NewConversationState("s1")

	runTurn(t, engine, state, "PO invoice status")
	runTurn(t, engine, state, "PO 1234567890, invoice 9876543210")
	assert.Equal(t, nodes.InvoiceNotFoundMessage, state.FinalResponse)
	assert.Equal(t, model.Stage(""), state.CurrentStage)
}

func TestTicketRefusedWithoutContactDetails(t *testing.T) {
	oracle := &scriptedOracle{
		intent:     model.InvoiceTypePO,
		po:         &model.PODetails{PONumber: "1234567890", InvoiceNumber: "9876543210"},
		contactErr: model.ErrMalformed,
	}
	lookup := &scriptedLookup{resp: &model.StatusResponse{InvoiceDetails: []model.InvoiceDetail{
		{PONumber: "1234567890", InvoiceNumber: "9876543210", StatusCode: "PAID", StatusDescription: "Paid in full."},
	}}}
	tickets := &scriptedTickets{ticket: "INC0000001"}
	engine := buildTestEngine(t, oracle, lookup, tickets)
	state := model.NewConversationState("s1")

	runTurn(t, engine, state, "PO invoice status")
	runTurn(t, engine, state, "PO 1234567890, invoice 9876543210")
	runTurn(t, engine, state, "no")

	assert.Contains(t, state.FinalResponse, nodes.CannotCreateTicketMessage)
	assert.Empty(t, state.ServiceNowTicket)
	assert.Equal(t, model.Stage(""), state.CurrentStage)
}

func TestTurnClearsPreviousResponseAndTicket(t *testing.T) {
	oracle := &scriptedOracle{intent: model.InvoiceTypeGreeting}
	engine := buildTestEngine(t, oracle, &scriptedLookup{}, &scriptedTickets{})
	state := model.NewConversationState("s1")
	state.FinalResponse = "left over from last turn"
	state.ServiceNowTicket = "INC999"

	runTurn(t, engine, state, "hi")
	assert.Equal(t, nodes.GreetingMessage, state.FinalResponse)
	assert.Empty(t, state.ServiceNowTicket)
}

func TestCompileValidation(t *testing.T) {
	handler := nodes.NewGreetingHandler()

	t.Run("missing entry", func(t *testing.T) {
		b := NewGraphBuilder().AddStage(model.StageGreeting, handler).MarkTerminal(model.StageGreeting)
		_, err := b.Compile(nil, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entry stage not set")
	})

	t.Run("edge to unregistered stage", func(t *testing.T) {
		b := NewGraphBuilder().
			AddStage(model.StageGreeting, handler).
			SetEntry(model.StageGreeting).
			AddEdge(model.StageGreeting, model.StageCallSAPAPI)
		_, err := b.Compile(nil, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unregistered stage")
	})

	t.Run("non-terminal dead end", func(t *testing.T) {
		b := NewGraphBuilder().
			AddStage(model.StageGreeting, handler).
			SetEntry(model.StageGreeting)
		_, err := b.Compile(nil, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no successor")
	})

	t.Run("edge and branch conflict", func(t *testing.T) {
		b := NewGraphBuilder().
			AddStage(model.StageGreeting, handler).
			AddStage(model.StageEndConversation, handler).
			SetEntry(model.StageGreeting).
			AddEdge(model.StageGreeting, model.StageEndConversation).
			AddBranch(model.StageGreeting, routers.To(model.StageEndConversation)).
			MarkTerminal(model.StageEndConversation)
		_, err := b.Compile(nil, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "both an edge and a branch")
	})

	t.Run("full graph compiles", func(t *testing.T) {
		engine, err := BuildInvoiceGraph(Deps{
			Oracle:   &scriptedOracle{},
			Invoices: &scriptedLookup{},
			Tickets:  &scriptedTickets{},
		})
		require.NoError(t, err)
		assert.NotNil(t, engine)
	})
}

func TestRunTurnStepLimit(t *testing.T) {
	// two stages bouncing between each other never suspend and never finish
	ping := model.StageGeneratePayload
	pong := model.StageCallSAPAPI
	noop := func(ctx context.Context, state *model.ConversationState) error { return nil }

	b := NewGraphBuilder().
		AddStage(ping, noop).
		AddStage(pong, noop).
		SetEntry(ping).
		AddEdge(ping, pong).
		AddEdge(pong, ping)
	engine, err := b.Compile(nil, 6)
	require.NoError(t, err)

	state := model.NewConversationState("s1")
	err = engine.RunTurn(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded 6 stage executions")
}
