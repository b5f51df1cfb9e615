package graph

import (
	"context"
	"fmt"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/nodes"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/observers"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/routers"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	"github.com/yogeshdhome/Invoice-Assistant/internal/observability"
)

// defaultMaxTurnSteps bounds stage executions per turn when no limit is
// configured. The longest legitimate path (classify through ticket creation)
// is well under this.
const defaultMaxTurnSteps = 20

// Engine executes the compiled dialogue graph one turn at a time. A turn runs
// stages until a router suspends at the current stage, or a terminal stage
// ends the enquiry. Engine is stateless across sessions; all per-session data
// lives in the ConversationState the caller passes in.
type Engine struct {
	handlers map[model.Stage]nodes.HandlerFunc
	edges    map[model.Stage]model.Stage
	branches map[model.Stage]routers.RouterFunc
	resume   map[model.Stage]routers.RouterFunc
	terminal map[model.Stage]bool
	entry    model.Stage
	observer observers.StageObserver
	maxSteps int
}

// RunTurn processes one user message against the session state. On return the
// state carries the accumulated FinalResponse for this turn and, when the
// turn suspended, the CurrentStage to resume from next time. Terminal stages
// reset the enquiry flow so the next message starts fresh.
func (e *Engine) RunTurn(ctx context.Context, state *model.ConversationState) error {
	state.FinalResponse = ""
	state.ServiceNowTicket = ""

	cur := e.entryFor(state)

	for step := 0; step < e.maxSteps; step++ {
		handler, ok := e.handlers[cur]
		if !ok {
			return fmt.Errorf("graph: no handler for stage %q", cur)
		}

		e.observer.OnStageStart(ctx, cur, state)
		observability.RecordStage(cur.String())
		err := handler(ctx, state)
		e.observer.OnStageEnd(ctx, cur, state, err)
		if err != nil {
			return fmt.Errorf("stage %q: %w", cur, err)
		}

		if e.terminal[cur] {
			state.ResetFlow()
			return nil
		}

		next := e.next(cur, state)
		if next == cur {
			state.CurrentStage = cur
			return nil
		}
		cur = next
	}

	return fmt.Errorf("graph: turn exceeded %d stage executions at %q", e.maxSteps, cur)
}

// entryFor resolves where this turn enters the graph. A suspended session
// resumes through its stage's resume router; anything else starts at the
// entry stage.
func (e *Engine) entryFor(state *model.ConversationState) model.Stage {
	if state.CurrentStage == "" {
		return e.entry
	}
	router, ok := e.resume[state.CurrentStage]
	if !ok {
		return e.entry
	}
	return router(state)
}

func (e *Engine) next(cur model.Stage, state *model.ConversationState) model.Stage {
	if router, ok := e.branches[cur]; ok {
		return router(state)
	}
	return e.edges[cur]
}
