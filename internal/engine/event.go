package engine

import (
	"context"
	"fmt"

	"github.com/ewingjm/scenario-builder/internal/ctxlog"
)

// Kind identifies a registered event or scenario declaration.
type Kind string

// Event is a single unit of scenario setup work. Implementations write their
// results into the context with ScenarioContext.Set, conventionally under
// their own ID.
type Event interface {
	ID() string
	Execute(ctx context.Context, sc *ScenarioContext) error
}

// Composite is an Event whose body runs a declared pipeline of child events.
// Types implement it by embedding *CompositeEvent.
type Composite interface {
	Event
	composite() *CompositeEvent
}

// Fire executes ev against sc at most once. A leaf event whose id is already
// in the history is skipped; a failed event is not recorded. Composite events
// always run their body so that newly selected children get a chance to fire.
func Fire(ctx context.Context, sc *ScenarioContext, ev Event) error {
	logger := ctxlog.FromContext(ctx)

	if _, ok := ev.(Composite); ok {
		logger.Debug("executing composite event", "event", ev.ID())
		return ev.Execute(ctx, sc)
	}

	if sc.HasFired(ev.ID()) {
		logger.Debug("skipping event already in history", "event", ev.ID())
		return nil
	}

	logger.Debug("firing event", "event", ev.ID())
	if err := ev.Execute(ctx, sc); err != nil {
		return fmt.Errorf("event %q: %w", ev.ID(), err)
	}
	sc.record(ev.ID())
	return nil
}
