// Package bot runs the per-tick game loop: read the referee's frame, pick a
// target for every pac, answer with move commands.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/pacgrid/internal/assign"
	"github.com/freeeve/pacgrid/internal/logger"
	"github.com/freeeve/pacgrid/internal/model"
	"github.com/freeeve/pacgrid/internal/protocol"
	"github.com/freeeve/pacgrid/internal/repository"
	"github.com/freeeve/pacgrid/pkg/grid"
	"github.com/freeeve/pacgrid/pkg/paths"
)

// cacheTimeout bounds each index cache round trip.
const cacheTimeout = 2 * time.Second

// Publisher accepts processed ticks without blocking.
// Implemented by service.Telemetry.
type Publisher interface {
	Publish(rec *model.TickRecord) bool
}

// Options configures a Controller.
type Options struct {
	MatchID     string
	Lazy        bool // compute paths per source on first use instead of all up front
	RenderPaths bool // log an ASCII path overlay per decision at debug level
}

// Controller owns one match: the map, its path index and the assigner.
type Controller struct {
	in        *protocol.Reader
	out       *protocol.Writer
	opts      Options
	cache     repository.IndexCache
	publisher Publisher
	log       zerolog.Logger

	g        *grid.Grid
	q        paths.Querier
	assigner *assign.Assigner
	tick     int
	bg       sync.WaitGroup
}

// NewController creates a Controller reading referee input from in and
// writing commands to out.
func NewController(in io.Reader, out io.Writer, opts Options) *Controller {
	return &Controller{
		in:   protocol.NewReader(in),
		out:  protocol.NewWriter(out),
		opts: opts,
		log:  logger.ForMatch(opts.MatchID),
	}
}

// WithCache makes the controller reuse path indexes stored in cache.
func (c *Controller) WithCache(cache repository.IndexCache) *Controller {
	c.cache = cache
	return c
}

// WithPublisher sends every processed tick to p.
func (c *Controller) WithPublisher(p Publisher) *Controller {
	c.publisher = p
	return c
}

// Ticks returns the number of ticks answered so far.
func (c *Controller) Ticks() int { return c.tick }

// Run plays the match until the input ends. It returns nil on a clean end of
// input and ctx.Err() when cancelled between ticks.
func (c *Controller) Run(ctx context.Context) error {
	defer c.bg.Wait()

	if err := c.Init(ctx); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			c.log.Info().Int("ticks", c.tick).Msg("Context cancelled, stopping")
			return err
		}
		frame, err := c.in.ReadTick()
		if errors.Is(err, io.EOF) {
			c.log.Info().Int("ticks", c.tick).Msg("Input closed, match over")
			return nil
		}
		if err != nil {
			return fmt.Errorf("tick %d: %w", c.tick+1, err)
		}
		if _, err := c.Step(frame); err != nil {
			return fmt.Errorf("tick %d: %w", c.tick, err)
		}
	}
}

// Init reads the map and prepares the path index.
func (c *Controller) Init(ctx context.Context) error {
	g, err := c.in.ReadMap()
	if err != nil {
		return fmt.Errorf("read map: %w", err)
	}
	start := time.Now()
	c.g = g
	c.q = c.loadIndex(ctx, g)
	c.assigner = assign.New(c.q, g.Center())
	c.log.Info().
		Int("rows", g.Rows()).
		Int("cols", g.Cols()).
		Int("floor", len(g.FreeCells())).
		Bool("lazy", c.opts.Lazy).
		Float64("elapsedMs", ms(time.Since(start))).
		Msg("Map loaded")
	return nil
}

// loadIndex restores a cached index or builds a fresh one. Cache failures
// only cost the rebuild.
func (c *Controller) loadIndex(ctx context.Context, g *grid.Grid) paths.Querier {
	if c.opts.Lazy {
		return paths.NewLazy(g)
	}
	if c.cache != nil {
		cctx, cancel := context.WithTimeout(ctx, cacheTimeout)
		ix, err := c.cache.LoadIndex(cctx, g)
		cancel()
		if err != nil {
			c.log.Warn().Err(err).Msg("Index cache lookup failed")
		}
		if ix != nil {
			c.log.Debug().Int("footprint", ix.Footprint()).Msg("Path index restored from cache")
			return ix
		}
	}

	ix := paths.Build(g)
	c.log.Debug().Int("footprint", ix.Footprint()).Msg("Path index built")
	if c.cache != nil {
		c.bg.Add(1)
		go func() {
			defer c.bg.Done()
			cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
			defer cancel()
			if err := c.cache.StoreIndex(cctx, ix); err != nil {
				c.log.Warn().Err(err).Msg("Index cache store failed")
			}
		}()
	}
	return ix
}

// Step answers one frame and returns the decisions sent.
func (c *Controller) Step(frame *protocol.Frame) ([]assign.Decision, error) {
	if c.assigner == nil {
		return nil, errors.New("bot: step before init")
	}
	start := time.Now()
	c.tick++

	for _, id := range frame.Fallen() {
		c.assigner.Forget(id)
	}
	tick := frame.Tick()
	decisions := c.assigner.Assign(tick)
	if err := c.out.WriteMoves(decisions); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	c.log.Info().
		Int("tick", c.tick).
		Int("agents", len(tick.Agents)).
		Int("pellets", len(tick.Pellets)).
		Float64("elapsedMs", ms(elapsed)).
		Msg("Tick processed")
	if c.opts.RenderPaths && zerolog.GlobalLevel() <= zerolog.DebugLevel {
		for i, d := range decisions {
			c.log.Debug().Int("pac", d.AgentID).Str("reason", string(d.Reason)).
				Msg("\n" + paths.Render(c.g, c.q, tick.Agents[i].Cell, d.Target))
		}
	}
	if c.publisher != nil {
		c.publisher.Publish(c.record(frame, decisions, elapsed))
	}
	return decisions, nil
}

func (c *Controller) record(frame *protocol.Frame, decisions []assign.Decision, elapsed time.Duration) *model.TickRecord {
	rec := &model.TickRecord{
		MatchID:       c.opts.MatchID,
		Tick:          c.tick,
		MyScore:       frame.MyScore,
		OpponentScore: frame.OpponentScore,
		Pellets:       len(frame.Pellets),
		ElapsedMs:     ms(elapsed),
		Pacs:          make([]model.PacRecord, 0, len(frame.Pacs)),
		Decisions:     make([]model.DecisionRecord, 0, len(decisions)),
		CreatedAt:     time.Now().UTC(),
	}
	for _, p := range frame.Pacs {
		rec.Pacs = append(rec.Pacs, model.PacRecord{
			ID: p.ID, Mine: p.Mine, X: p.Cell.Col, Y: p.Cell.Row, Type: p.Type.String(),
		})
	}
	for _, d := range decisions {
		dist := -1
		if d.Distance.Reachable() {
			dist = int(d.Distance)
		}
		rec.Decisions = append(rec.Decisions, model.DecisionRecord{
			AgentID:  d.AgentID,
			TargetX:  d.Target.Col,
			TargetY:  d.Target.Row,
			Reason:   string(d.Reason),
			Distance: dist,
		})
	}
	return rec
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
