package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/pacgrid/pkg/grid"
	"github.com/freeeve/pacgrid/pkg/paths"
)

// indexKeyPrefix carries the snapshot format version. Bump it when the
// Snapshot encoding or the Direction numbering changes.
const indexKeyPrefix = "pathindex:v1:"

// indexKey addresses a snapshot by the wall layout of its map, so maps that
// differ only in floor glyphs share an entry.
func indexKey(g *grid.Grid) string {
	h := sha256.New()
	fmt.Fprintf(h, "%dx%d\n", g.Cols(), g.Rows())
	row := make([]byte, g.Cols()+1)
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			if g.IsWall(grid.Cell{Row: r, Col: c}) {
				row[c] = grid.WallChar
			} else {
				row[c] = ' '
			}
		}
		row[g.Cols()] = '\n'
		h.Write(row)
	}
	return indexKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// LoadIndex restores the cached index for g. It returns nil, nil on a miss.
// A stored snapshot that no longer matches the map is treated as a miss and
// removed.
func (c *Client) LoadIndex(ctx context.Context, g *grid.Grid) (*paths.Index, error) {
	key := indexKey(g)
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get path index: %w", err)
	}
	var snap paths.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.drop(ctx, key, err)
		return nil, nil
	}
	ix, err := paths.Restore(g, &snap)
	if errors.Is(err, paths.ErrSnapshotMismatch) {
		c.drop(ctx, key, err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore path index: %w", err)
	}
	return ix, nil
}

// drop removes an unusable entry. A failed delete only costs a rebuild on
// the next load, so it is logged rather than returned.
func (c *Client) drop(ctx context.Context, key string, reason error) {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).AnErr("reason", reason).Msg("Failed to drop stale path index")
	}
}

// StoreIndex caches ix under its map's key.
func (c *Client) StoreIndex(ctx context.Context, ix *paths.Index) error {
	data, err := json.Marshal(ix.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal path index: %w", err)
	}
	if err := c.rdb.Set(ctx, indexKey(ix.Grid()), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set path index: %w", err)
	}
	return nil
}

// DropIndex removes any cached index for g.
func (c *Client) DropIndex(ctx context.Context, g *grid.Grid) error {
	return c.rdb.Del(ctx, indexKey(g)).Err()
}
