// Package assignment picks the branch and the marketing agent for a new loan request.
package assignment

import (
	"context"
	"fmt"
	"log/slog"

	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// AgentDirectory lists the marketing agents of a branch in a stable order.
type AgentDirectory interface {
	ListMarketingByBranch(ctx context.Context, branchID uuid.UUID) ([]uuid.UUID, error)
}

// LoadCounter reports open (non-terminal) request counts per agent in a branch.
// Agents without open requests may be absent from the map.
type LoadCounter interface {
	CountOpenByMarketing(ctx context.Context, branchID uuid.UUID) (map[uuid.UUID]int, error)
}

type Balancer struct {
	agents AgentDirectory
	load   LoadCounter
	logger *slog.Logger
}

func NewBalancer(agents AgentDirectory, load LoadCounter, logger *slog.Logger) *Balancer {
	if agents == nil || load == nil {
		panic("balancer dependencies cannot be nil")
	}
	return &Balancer{
		agents: agents,
		load:   load,
		logger: logger.With(slog.String("component", "MarketingBalancer")),
	}
}

// Assign returns the least loaded agent of the branch. Ties go to the agent
// listed first. The counts are a snapshot; concurrent callers may pick the
// same agent.
func (b *Balancer) Assign(ctx context.Context, branchID uuid.UUID) (uuid.UUID, error) {
	agents, err := b.agents.ListMarketingByBranch(ctx, branchID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("listing marketing agents of branch %s: %w", branchID, err)
	}
	if len(agents) == 0 {
		return uuid.Nil, fmt.Errorf("%w: branch %s", apperrors.ErrNoAgentAvailable, branchID)
	}

	counts, err := b.load.CountOpenByMarketing(ctx, branchID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("counting open requests of branch %s: %w", branchID, err)
	}

	chosen := pickLeastLoaded(agents, counts)
	b.logger.DebugContext(ctx, "Marketing agent selected",
		slog.String("branchID", branchID.String()),
		slog.String("marketingID", chosen.String()),
		slog.Int("openCount", counts[chosen]))
	return chosen, nil
}

func pickLeastLoaded(agents []uuid.UUID, counts map[uuid.UUID]int) uuid.UUID {
	chosen := agents[0]
	best := counts[chosen]
	for _, id := range agents[1:] {
		if c := counts[id]; c < best {
			chosen, best = id, c
		}
	}
	return chosen
}
