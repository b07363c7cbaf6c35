package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/ports"
	"github.com/google/uuid"
)

// FlowController persists the single open question flow of a session and
// enforces the stage transition table.
type FlowController struct {
	store ports.StateStore
	clock ports.Clock
	ttl   time.Duration
}

func NewFlowController(store ports.StateStore, clock ports.Clock, ttl time.Duration) *FlowController {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &FlowController{
		store: store,
		clock: clock,
		ttl:   ttl,
	}
}

// Current returns the open flow of the session, if any. A stored flow that is
// not waiting on an answer counts as absent.
func (c *FlowController) Current(ctx context.Context, session domain.SessionID) (domain.QuestionFlow, bool, error) {
	var flow domain.QuestionFlow
	found, err := c.store.Read(ctx, domain.KeyFor(session, domain.StateFlow), c.ttl, &flow)
	if err != nil {
		return domain.QuestionFlow{}, false, fmt.Errorf("read question flow: %w", err)
	}
	if !found || !flow.Open() {
		return domain.QuestionFlow{}, false, nil
	}

	return flow, true, nil
}

// Open starts a new flow at flow.Stage. It fails with domain.ErrFlowOpen when
// the session already waits on an answer.
func (c *FlowController) Open(ctx context.Context, session domain.SessionID, flow domain.QuestionFlow) (domain.QuestionFlow, error) {
	_, open, err := c.Current(ctx, session)
	if err != nil {
		return domain.QuestionFlow{}, err
	}
	if open {
		return domain.QuestionFlow{}, domain.ErrFlowOpen
	}

	target := flow.Stage
	flow.Stage = domain.StageInitial
	if err := flow.Advance(target); err != nil {
		return domain.QuestionFlow{}, err
	}
	flow.LastChoice = ""

	if err := c.Save(ctx, session, &flow); err != nil {
		return domain.QuestionFlow{}, err
	}

	return flow, nil
}

// Advance moves an open flow to its next stage and stores it under a fresh
// question id. Advancing to complete clears the stored flow.
func (c *FlowController) Advance(ctx context.Context, session domain.SessionID, flow *domain.QuestionFlow, to domain.Stage) error {
	if err := flow.Advance(to); err != nil {
		return err
	}
	if to == domain.StageComplete {
		return c.Cancel(ctx, session)
	}

	flow.Listing = false
	return c.Save(ctx, session, flow)
}

// Save stores the flow as the next question of the session.
func (c *FlowController) Save(ctx context.Context, session domain.SessionID, flow *domain.QuestionFlow) error {
	flow.QuestionID = uuid.NewString()
	flow.OpenedAt = c.clock.Now().UTC()

	if err := c.store.Write(ctx, domain.KeyFor(session, domain.StateFlow), *flow, c.ttl); err != nil {
		return fmt.Errorf("write question flow: %w", err)
	}

	return nil
}

func (c *FlowController) Cancel(ctx context.Context, session domain.SessionID) error {
	if err := c.store.Clear(ctx, domain.KeyFor(session, domain.StateFlow)); err != nil {
		return fmt.Errorf("clear question flow: %w", err)
	}

	return nil
}
