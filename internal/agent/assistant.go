// Package agent hosts the conversation orchestrator: the boundary between
// inbound user messages and the dialogue graph. It owns session memory,
// guardrails, and turn serialization.
package agent

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/conversations"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	errx "github.com/yogeshdhome/Invoice-Assistant/internal/core/error"
	"github.com/yogeshdhome/Invoice-Assistant/internal/guardrails"
	"github.com/yogeshdhome/Invoice-Assistant/internal/observability"
	logx "github.com/yogeshdhome/Invoice-Assistant/pkg/logger"
)

// FallbackResponse is returned when a turn produced no user-facing text.
const FallbackResponse = "I am sorry, something went wrong."

// Assistant runs one conversation turn end to end: guardrails on the way in,
// state and history loading, graph execution, guardrails and redaction on the
// way out, then persistence. Turns within one session are serialized; turns
// across sessions run concurrently.
type Assistant struct {
	engine    *graph.Engine
	mm        *conversations.MessagesManager
	states    model.StateRepository
	analytics model.AnalyticsRepository

	mu       sync.Mutex
	sessions map[string]*sessionLock
}

// sessionLock serializes turns within one session. refs counts holders and
// waiters so the entry can be dropped once the session goes quiet, keeping
// the map from growing with every session ever seen.
type sessionLock struct {
	sync.Mutex
	refs int
}

func NewAssistant(
	engine *graph.Engine,
	mm *conversations.MessagesManager,
	states model.StateRepository,
	analytics model.AnalyticsRepository,
) *Assistant {
	return &Assistant{
		engine:    engine,
		mm:        mm,
		states:    states,
		analytics: analytics,
		sessions:  make(map[string]*sessionLock),
	}
}

// RunTurn processes one user message and returns the assistant's reply.
func (a *Assistant) RunTurn(ctx context.Context, in model.QueryInput) (*model.TurnResult, error) {
	started := time.Now()

	if err := guardrails.ValidateInput(in.Query); err != nil {
		observability.RecordTurn("rejected", time.Since(started))
		return nil, errx.New(err, http.StatusBadRequest, "input failed validation")
	}

	unlock := a.lockSession(in.SessionID)
	defer unlock()

	result, err := a.runLocked(ctx, in)
	if err != nil {
		observability.RecordTurn("error", time.Since(started))
		return nil, err
	}
	observability.RecordTurn("success", time.Since(started))
	return result, nil
}

func (a *Assistant) runLocked(ctx context.Context, in model.QueryInput) (*model.TurnResult, error) {
	state, err := a.states.LoadState(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = model.NewConversationState(in.SessionID)
	}

	history, err := a.mm.LoadHistory(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	state.History = history
	state.UserQuery = in.Query

	if err := a.engine.RunTurn(ctx, state); err != nil {
		logx.Error().Err(err).Str("session_id", in.SessionID).Msg("turn execution failed")
		return nil, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}

	response := state.FinalResponse
	if response == "" {
		response = FallbackResponse
	}
	if err := guardrails.ValidateOutput(response); err != nil {
		logx.Error().Err(err).Str("session_id", in.SessionID).Msg("output failed validation")
		return nil, errx.New(err, http.StatusInternalServerError, "output failed validation")
	}
	response = guardrails.Redact(response)

	if err := a.mm.SaveTurn(ctx, in.SessionID, in.Query, response); err != nil {
		return nil, err
	}
	if err := a.states.SaveState(ctx, state); err != nil {
		return nil, err
	}

	// Long-term memory is best effort: a failed analytics write never fails
	// the turn the user already got an answer for.
	record := &model.ConversationRecord{
		SessionID:     in.SessionID,
		UserQuery:     in.Query,
		AgentResponse: response,
		FinalStatus:   a.finalStatus(state),
		CreatedAt:     time.Now().UTC(),
	}
	if err := a.analytics.SaveRecord(ctx, record); err != nil {
		logx.Warn().Err(err).Str("session_id", in.SessionID).Msg("failed to save analytics record")
	}

	return &model.TurnResult{
		ResponseMessage:  response,
		SessionID:        in.SessionID,
		ServiceNowTicket: state.ServiceNowTicket,
	}, nil
}

func (a *Assistant) finalStatus(state *model.ConversationState) string {
	if state.ServiceNowTicket != "" {
		return "ticket_created"
	}
	if state.CurrentStage != "" {
		return "awaiting_" + state.CurrentStage.String()
	}
	return "completed"
}

func (a *Assistant) lockSession(sessionID string) func() {
	a.mu.Lock()
	l, ok := a.sessions[sessionID]
	if !ok {
		l = &sessionLock{}
		a.sessions[sessionID] = l
	}
	l.refs++
	a.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.sessions, sessionID)
		}
		a.mu.Unlock()
	}
}
