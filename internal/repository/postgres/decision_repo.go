package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/pacgrid/internal/model"
)

// DecisionRepo handles tick and decision database operations.
type DecisionRepo struct {
	db *sql.DB
}

// NewDecisionRepo creates a DecisionRepo.
func NewDecisionRepo(db *sql.DB) *DecisionRepo {
	return &DecisionRepo{db: db}
}

// RecordTick stores a tick and its decisions in one transaction. Recording
// the same tick twice replaces the earlier row.
func (r *DecisionRepo) RecordTick(ctx context.Context, rec *model.TickRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var tickID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO ticks (match_id, tick, my_score, opponent_score, pellets, elapsed_ms)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (match_id, tick) DO UPDATE
		 SET my_score = EXCLUDED.my_score, opponent_score = EXCLUDED.opponent_score,
		     pellets = EXCLUDED.pellets, elapsed_ms = EXCLUDED.elapsed_ms, created_at = now()
		 RETURNING id, created_at`,
		rec.MatchID, rec.Tick, rec.MyScore, rec.OpponentScore, rec.Pellets, rec.ElapsedMs,
	).Scan(&tickID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tick: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tick_decisions WHERE tick_id = $1`, tickID); err != nil {
		return fmt.Errorf("clear decisions: %w", err)
	}
	for i, d := range rec.Decisions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tick_decisions (tick_id, seq, agent_id, target_x, target_y, reason, distance)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			tickID, i, d.AgentID, d.TargetX, d.TargetY, d.Reason, d.Distance,
		)
		if err != nil {
			return fmt.Errorf("insert decision: %w", err)
		}
	}
	return tx.Commit()
}

// ListTicks returns a match's ticks in order, each with its decisions in
// agent order.
func (r *DecisionRepo) ListTicks(ctx context.Context, matchID string) ([]model.TickRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.tick, t.my_score, t.opponent_score, t.pellets, t.elapsed_ms, t.created_at,
		        d.agent_id, d.target_x, d.target_y, d.reason, d.distance
		 FROM ticks t
		 LEFT JOIN tick_decisions d ON d.tick_id = t.id
		 WHERE t.match_id = $1
		 ORDER BY t.tick, d.seq`, matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ticks: %w", err)
	}
	defer rows.Close()

	var ticks []model.TickRecord
	lastID := int64(-1)
	for rows.Next() {
		var (
			id                int64
			t                 model.TickRecord
			agent, x, y, dist sql.NullInt64
			reason            sql.NullString
		)
		if err := rows.Scan(&id, &t.Tick, &t.MyScore, &t.OpponentScore, &t.Pellets, &t.ElapsedMs, &t.CreatedAt,
			&agent, &x, &y, &reason, &dist); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		if id != lastID {
			t.MatchID = matchID
			t.Decisions = []model.DecisionRecord{}
			ticks = append(ticks, t)
			lastID = id
		}
		if agent.Valid {
			cur := &ticks[len(ticks)-1]
			cur.Decisions = append(cur.Decisions, model.DecisionRecord{
				AgentID:  int(agent.Int64),
				TargetX:  int(x.Int64),
				TargetY:  int(y.Int64),
				Reason:   reason.String,
				Distance: int(dist.Int64),
			})
		}
	}
	return ticks, rows.Err()
}

// Summary aggregates a match. It returns nil when no ticks are stored.
func (r *DecisionRepo) Summary(ctx context.Context, matchID string) (*model.MatchSummary, error) {
	s := model.MatchSummary{MatchID: matchID}
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(elapsed_ms), MIN(created_at), MAX(created_at),
		        (SELECT my_score FROM ticks WHERE match_id = $1 ORDER BY tick DESC LIMIT 1),
		        (SELECT opponent_score FROM ticks WHERE match_id = $1 ORDER BY tick DESC LIMIT 1)
		 FROM ticks WHERE match_id = $1
		 HAVING COUNT(*) > 0`, matchID,
	).Scan(&s.Ticks, &s.MaxElapsedMs, &s.StartedAt, &s.LastTickAt, &s.MyScore, &s.OpponentScore)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("match summary: %w", err)
	}
	return &s, nil
}
