package model

import "time"

// DecisionRecord is one agent's target choice in a tick. Coordinates follow
// the wire convention (x is the column). Distance is -1 when unreachable.
type DecisionRecord struct {
	AgentID  int    `json:"agent_id"`
	TargetX  int    `json:"target_x"`
	TargetY  int    `json:"target_y"`
	Reason   string `json:"reason"`
	Distance int    `json:"distance"`
}

// PacRecord is a visible pac as reported by the referee.
type PacRecord struct {
	ID   int    `json:"id"`
	Mine bool   `json:"mine"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Type string `json:"type"`
}

// TickRecord summarises one processed tick for spectators and storage.
type TickRecord struct {
	MatchID       string           `json:"match_id"`
	Tick          int              `json:"tick"`
	MyScore       int              `json:"my_score"`
	OpponentScore int              `json:"opponent_score"`
	Pellets       int              `json:"pellets"`
	ElapsedMs     float64          `json:"elapsed_ms"`
	Pacs          []PacRecord      `json:"pacs,omitempty"`
	Decisions     []DecisionRecord `json:"decisions"`
	CreatedAt     time.Time        `json:"created_at"`
}

// MatchSummary aggregates the stored ticks of one match.
type MatchSummary struct {
	MatchID       string    `json:"match_id"`
	Ticks         int       `json:"ticks"`
	MyScore       int       `json:"my_score"`
	OpponentScore int       `json:"opponent_score"`
	MaxElapsedMs  float64   `json:"max_elapsed_ms"`
	StartedAt     time.Time `json:"started_at"`
	LastTickAt    time.Time `json:"last_tick_at"`
}
