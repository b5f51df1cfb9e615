// Package observers provides hooks around dialogue stage execution, used for
// structured tracing of a turn's path through the graph.
package observers

import (
	"context"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	logx "github.com/yogeshdhome/Invoice-Assistant/pkg/logger"
)

// StageObserver is notified around every stage execution.
type StageObserver interface {
	OnStageStart(ctx context.Context, stage model.Stage, state *model.ConversationState)
	OnStageEnd(ctx context.Context, stage model.Stage, state *model.ConversationState, err error)
}

type nopObserver struct{}

func (nopObserver) OnStageStart(context.Context, model.Stage, *model.ConversationState) {}
func (nopObserver) OnStageEnd(context.Context, model.Stage, *model.ConversationState, error) {
}

// Nop returns an observer that does nothing.
func Nop() StageObserver {
	return nopObserver{}
}

type loggingObserver struct{}

// NewLoggingObserver traces stage execution at debug level, including the
// routing-relevant state after each stage.
func NewLoggingObserver() StageObserver {
	return loggingObserver{}
}

func (loggingObserver) OnStageStart(ctx context.Context, stage model.Stage, state *model.ConversationState) {
	logx.Debug().
		Str("session_id", state.SessionID).
		Str("stage", stage.String()).
		Msg("stage start")
}

func (loggingObserver) OnStageEnd(ctx context.Context, stage model.Stage, state *model.ConversationState, err error) {
	evt := logx.Debug().
		Str("session_id", state.SessionID).
		Str("stage", stage.String()).
		Str("invoice_type", string(state.InvoiceType))
	if err != nil {
		evt = logx.Error().
			Str("session_id", state.SessionID).
			Str("stage", stage.String()).
			Err(err)
	}
	evt.Msg("stage end")
}
