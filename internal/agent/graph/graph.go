// Package graph builds and runs the dialogue state machine behind the invoice
// assistant. Stages come from the nodes package, edge decisions from the
// routers package; this package wires them together and validates the wiring
// at construction time.
package graph

import (
	"fmt"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/nodes"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/observers"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/routers"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
)

// Deps carries the collaborators the stage handlers need.
type Deps struct {
	Oracle   model.ExtractionOracle
	Invoices model.InvoiceStatusClient
	Tickets  model.TicketClient

	// MaxTurnSteps bounds stage executions within one turn. Zero means the
	// default from ConversationConfig applies.
	MaxTurnSteps int
}

// GraphBuilder accumulates stages and edges and validates the result into an
// Engine. Every referenced stage must be registered before Compile.
type GraphBuilder struct {
	handlers map[model.Stage]nodes.HandlerFunc
	edges    map[model.Stage]model.Stage
	branches map[model.Stage]routers.RouterFunc
	resume   map[model.Stage]routers.RouterFunc
	terminal map[model.Stage]bool
	entry    model.Stage
}

func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		handlers: make(map[model.Stage]nodes.HandlerFunc),
		edges:    make(map[model.Stage]model.Stage),
		branches: make(map[model.Stage]routers.RouterFunc),
		resume:   make(map[model.Stage]routers.RouterFunc),
		terminal: make(map[model.Stage]bool),
	}
}

// AddStage registers a stage handler.
func (b *GraphBuilder) AddStage(stage model.Stage, handler nodes.HandlerFunc) *GraphBuilder {
	b.handlers[stage] = handler
	return b
}

// AddEdge sets an unconditional successor for a stage.
func (b *GraphBuilder) AddEdge(from, to model.Stage) *GraphBuilder {
	b.edges[from] = to
	return b
}

// AddBranch sets a conditional successor for a stage. A branch and an edge on
// the same stage is a wiring error caught at Compile.
func (b *GraphBuilder) AddBranch(from model.Stage, router routers.RouterFunc) *GraphBuilder {
	b.branches[from] = router
	return b
}

// AddResume sets where the graph re-enters when a previous turn suspended at
// the given stage. Stages without a resume entry restart at the entry stage.
func (b *GraphBuilder) AddResume(at model.Stage, router routers.RouterFunc) *GraphBuilder {
	b.resume[at] = router
	return b
}

// MarkTerminal declares that the enquiry flow ends after this stage.
func (b *GraphBuilder) MarkTerminal(stage model.Stage) *GraphBuilder {
	b.terminal[stage] = true
	return b
}

// SetEntry declares the stage a fresh turn starts at.
func (b *GraphBuilder) SetEntry(stage model.Stage) *GraphBuilder {
	b.entry = stage
	return b
}

// Compile validates the wiring and produces a runnable Engine. Validation
// fails on an unset or unregistered entry, edges into unregistered stages,
// non-terminal stages with no way forward, and stages with both an edge and
// a branch.
func (b *GraphBuilder) Compile(observer observers.StageObserver, maxSteps int) (*Engine, error) {
	if b.entry == "" {
		return nil, fmt.Errorf("graph: entry stage not set")
	}
	if _, ok := b.handlers[b.entry]; !ok {
		return nil, fmt.Errorf("graph: entry stage %q not registered", b.entry)
	}

	for from, to := range b.edges {
		if _, ok := b.handlers[from]; !ok {
			return nil, fmt.Errorf("graph: edge from unregistered stage %q", from)
		}
		if _, ok := b.handlers[to]; !ok {
			return nil, fmt.Errorf("graph: edge %q -> unregistered stage %q", from, to)
		}
		if _, dup := b.branches[from]; dup {
			return nil, fmt.Errorf("graph: stage %q has both an edge and a branch", from)
		}
	}
	for from := range b.branches {
		if _, ok := b.handlers[from]; !ok {
			return nil, fmt.Errorf("graph: branch from unregistered stage %q", from)
		}
	}
	for at := range b.resume {
		if _, ok := b.handlers[at]; !ok {
			return nil, fmt.Errorf("graph: resume at unregistered stage %q", at)
		}
	}

	for stage := range b.handlers {
		if b.terminal[stage] {
			continue
		}
		_, hasEdge := b.edges[stage]
		_, hasBranch := b.branches[stage]
		if !hasEdge && !hasBranch {
			return nil, fmt.Errorf("graph: non-terminal stage %q has no successor", stage)
		}
	}

	if observer == nil {
		observer = observers.Nop()
	}
	if maxSteps <= 0 {
		maxSteps = defaultMaxTurnSteps
	}

	return &Engine{
		handlers: b.handlers,
		edges:    b.edges,
		branches: b.branches,
		resume:   b.resume,
		terminal: b.terminal,
		entry:    b.entry,
		observer: observer,
		maxSteps: maxSteps,
	}, nil
}

// BuildInvoiceGraph wires the complete invoice status dialogue.
//
// A turn runs stages until one suspends (a router picks the stage that just
// ran) or a terminal stage finishes the enquiry. Suspension points and their
// resume targets:
//
//	identify_intent suspends on an unclear intent and re-classifies the next
//	message; the ask stages suspend so the user can answer, resuming at the
//	matching collect stage; the collect stages suspend on failed extraction
//	and re-collect the next message; ask_for_satisfaction suspends and routes
//	the next message through the yes/no decision.
func BuildInvoiceGraph(deps Deps) (*Engine, error) {
	b := NewGraphBuilder()

	b.AddStage(model.StageGreeting, nodes.NewGreetingHandler()).
		AddStage(model.StageIdentifyIntent, nodes.NewIdentifyIntentHandler(deps.Oracle)).
		AddStage(model.StageAskPODetails, nodes.NewAskPODetailsHandler()).
		AddStage(model.StageAskNonPODetails, nodes.NewAskNonPODetailsHandler()).
		AddStage(model.StageCollectPODetails, nodes.NewCollectPODetailsHandler(deps.Oracle)).
		AddStage(model.StageCollectNonPODetails, nodes.NewCollectNonPODetailsHandler(deps.Oracle)).
		AddStage(model.StageGeneratePayload, nodes.NewGeneratePayloadHandler()).
		AddStage(model.StageCallSAPAPI, nodes.NewCallSAPHandler(deps.Invoices)).
		AddStage(model.StageExplainStatus, nodes.NewExplainStatusHandler()).
		AddStage(model.StageInvoiceNotFound, nodes.NewInvoiceNotFoundHandler()).
		AddStage(model.StageAskSatisfaction, nodes.NewAskSatisfactionHandler()).
		AddStage(model.StageCollectFeedback, nodes.NewCollectFeedbackHandler(deps.Oracle)).
		AddStage(model.StageCreateTicket, nodes.NewCreateTicketHandler(deps.Tickets)).
		AddStage(model.StageEndConversation, nodes.NewEndConversationHandler())

	b.SetEntry(model.StageIdentifyIntent)

	b.AddBranch(model.StageIdentifyIntent, routers.AfterIntent).
		AddBranch(model.StageAskPODetails, routers.To(model.StageAskPODetails)).
		AddBranch(model.StageAskNonPODetails, routers.To(model.StageAskNonPODetails)).
		AddBranch(model.StageCollectPODetails, routers.AfterPOValidation).
		AddBranch(model.StageCollectNonPODetails, routers.AfterNonPOValidation).
		AddBranch(model.StageCallSAPAPI, routers.AfterSAPCall).
		AddBranch(model.StageAskSatisfaction, routers.To(model.StageAskSatisfaction))

	b.AddEdge(model.StageGeneratePayload, model.StageCallSAPAPI).
		AddEdge(model.StageExplainStatus, model.StageAskSatisfaction).
		AddEdge(model.StageCollectFeedback, model.StageCreateTicket)

	b.AddResume(model.StageIdentifyIntent, routers.To(model.StageIdentifyIntent)).
		AddResume(model.StageAskPODetails, routers.To(model.StageCollectPODetails)).
		AddResume(model.StageAskNonPODetails, routers.To(model.StageCollectNonPODetails)).
		AddResume(model.StageCollectPODetails, routers.To(model.StageCollectPODetails)).
		AddResume(model.StageCollectNonPODetails, routers.To(model.StageCollectNonPODetails)).
		AddResume(model.StageAskSatisfaction, routers.AfterSatisfaction)

	b.MarkTerminal(model.StageGreeting).
		MarkTerminal(model.StageInvoiceNotFound).
		MarkTerminal(model.StageCreateTicket).
		MarkTerminal(model.StageEndConversation)

	return b.Compile(observers.NewLoggingObserver(), deps.MaxTurnSteps)
}
