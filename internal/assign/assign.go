// Package assign picks a navigation target for each agent every tick, using
// pre-computed grid distances: nearest unclaimed super pellet, then nearest
// ordinary pellet, then a fixed parking cell.
package assign

import (
	"github.com/freeeve/pacgrid/pkg/grid"
	"github.com/freeeve/pacgrid/pkg/paths"
)

// SuperValue is the smallest pellet value treated as a super pellet.
const SuperValue = 2

// Reason records which rule produced a decision.
type Reason string

const (
	ReasonRetain Reason = "retain"
	ReasonSuper  Reason = "super"
	ReasonPellet Reason = "pellet"
	ReasonPark   Reason = "park"
)

// Agent is one controlled unit as observed this tick.
type Agent struct {
	ID   int
	Cell grid.Cell
}

// Pellet is a visible target and its score value.
type Pellet struct {
	Cell  grid.Cell
	Value int
}

// IsSuper reports whether p is a high-value pellet.
func (p Pellet) IsSuper() bool { return p.Value >= SuperValue }

// Tick is the per-tick input: agents in priority order and visible pellets in
// observation order. Both orders break ties.
type Tick struct {
	Agents  []Agent
	Pellets []Pellet
}

// ValueAt returns the value of the pellet at c, or 0 when none is visible.
func (t Tick) ValueAt(c grid.Cell) int {
	for _, p := range t.Pellets {
		if p.Cell == c {
			return p.Value
		}
	}
	return 0
}

// Decision is the target chosen for one agent.
type Decision struct {
	AgentID  int
	Target   grid.Cell
	Reason   Reason
	Distance paths.Distance
}

// Assigner binds agents to targets. It remembers each agent's last target
// across ticks so an agent keeps heading to a pellet until it is eaten.
type Assigner struct {
	q        paths.Querier
	park     grid.Cell
	retained map[int]grid.Cell
}

// New creates an Assigner that parks idle agents at park.
func New(q paths.Querier, park grid.Cell) *Assigner {
	return &Assigner{
		q:        q,
		park:     park,
		retained: make(map[int]grid.Cell),
	}
}

// Park returns the idle parking cell.
func (a *Assigner) Park() grid.Cell { return a.park }

// Retained returns the remembered target for an agent.
func (a *Assigner) Retained(agentID int) (grid.Cell, bool) {
	c, ok := a.retained[agentID]
	return c, ok
}

// Forget drops an agent's remembered target, e.g. when the agent is gone.
func (a *Assigner) Forget(agentID int) {
	delete(a.retained, agentID)
}

// Assign returns one decision per agent, in agent order. A super pellet is
// claimed by the first agent that picks it during this call; retaining a
// target from an earlier tick does not claim it.
func (a *Assigner) Assign(t Tick) []Decision {
	var supers, pellets []Pellet
	for _, p := range t.Pellets {
		if p.IsSuper() {
			supers = append(supers, p)
		} else {
			pellets = append(pellets, p)
		}
	}
	claims := newClaimSet(len(supers))
	decisions := make([]Decision, 0, len(t.Agents))
	for _, ag := range t.Agents {
		d := a.decide(ag, t, supers, pellets, claims)
		a.retained[ag.ID] = d.Target
		decisions = append(decisions, d)
	}
	return decisions
}

func (a *Assigner) decide(ag Agent, t Tick, supers, pellets []Pellet, claims *claimSet) Decision {
	if prev, ok := a.retained[ag.ID]; ok && t.ValueAt(prev) > 0 {
		return Decision{AgentID: ag.ID, Target: prev, Reason: ReasonRetain, Distance: a.q.Distance(ag.Cell, prev)}
	}

	if i, dist := nearest(a.q, ag.Cell, supers, claims.taken); i >= 0 {
		claims.claim(i)
		return Decision{AgentID: ag.ID, Target: supers[i].Cell, Reason: ReasonSuper, Distance: dist}
	}

	if i, dist := nearest(a.q, ag.Cell, pellets, nil); i >= 0 {
		return Decision{AgentID: ag.ID, Target: pellets[i].Cell, Reason: ReasonPellet, Distance: dist}
	}

	return Decision{AgentID: ag.ID, Target: a.park, Reason: ReasonPark, Distance: a.q.Distance(ag.Cell, a.park)}
}

// nearest returns the index and distance of the closest candidate not
// excluded by skip. The first of several equally close candidates wins, and
// unreachable candidates are still chosen when nothing else is left.
func nearest(q paths.Querier, from grid.Cell, candidates []Pellet, skip func(int) bool) (int, paths.Distance) {
	best := -1
	bestDist := paths.Unreachable
	for i, p := range candidates {
		if skip != nil && skip(i) {
			continue
		}
		d := q.Distance(from, p.Cell)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// claimSet tracks super pellets already taken within one Assign call.
type claimSet struct {
	claimed []bool
}

func newClaimSet(n int) *claimSet {
	return &claimSet{claimed: make([]bool, n)}
}

func (c *claimSet) taken(i int) bool { return c.claimed[i] }

func (c *claimSet) claim(i int) { c.claimed[i] = true }
