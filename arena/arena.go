// Package arena implements the region allocator that owns every ast.Node
// produced during a parse: O(1) allocation off a bump index, geometric
// block growth capped at a configurable ceiling, and O(1) bulk reset.
//
// The design follows the "typed, fixed-capacity segment list with a bump
// index" idiom (structurally the same shape as open-policy-agent/opa's
// v1/storage/arena.Arena, which holds segments of a fixed Node array and
// bumps an index rather than a raw byte offset). That shape is chosen over
// a raw byte-buffer-plus-unsafe.Pointer allocator because ast.Node carries
// Go pointers (Parent/FirstChild/NextSibling, string headers); placing
// pointer-containing structs over a manually managed []byte region is
// unsound under the Go garbage collector, which needs the runtime's own
// type information to scan them. A slice of ast.Node is scanned correctly
// by construction, so the region-allocator contract in spec §4.1 (O(1)
// aligned allocation, O(1) reset, geometric growth, byte-budget
// accounting) is honored without reaching for unsafe.
package arena

import (
	"fmt"
)

// Stats reports allocator usage, surfaced in a successful parse outcome's
// metadata (arena high-water mark).
type Stats struct {
	Blocks       int
	NodesInUse   int
	TotalBytes   uint64 // sum of all block capacities, in bytes
	HighWaterBytes uint64 // bytes in use across all blocks at their peak
}

// Arena is a region allocator specialized to one element type's byte size,
// since a single parse only ever needs to allocate ast.Node values from it.
// elemSize is the size in bytes of one slot, used purely for byte-budget
// accounting (§4.1's alignment/size contract); actual placement is done by
// ast.Tree.Alloc, which calls Reserve and indexes its own []Node slices.
type Arena struct {
	elemSize uint64

	initialNodes uint64
	maxBlockNodes uint64
	maxTotalNodes uint64

	blocks []*block
	cur    int // index of the block Reserve currently bumps into

	totalNodes uint64 // nodes reserved since the last Reset
	highWater  uint64 // max simultaneous nodes in use, across resets
}

type block struct {
	cap  uint64
	used uint64
}

// Config parameterizes block sizing. All three *Bytes fields are divided
// by elemSize to get a node count per the Config table in SPEC_FULL.md.
type Config struct {
	ElemSize       uint64
	InitialBytes   uint64
	MaxBlockBytes  uint64
	MaxTotalBytes  uint64
}

// New creates an Arena with no blocks allocated yet; the first block is
// created lazily on first use, sized to InitialBytes.
func New(cfg Config) *Arena {
	if cfg.ElemSize == 0 {
		cfg.ElemSize = 1
	}
	div := func(bytes uint64) uint64 {
		n := bytes / cfg.ElemSize
		if n == 0 {
			n = 1
		}
		return n
	}
	return &Arena{
		elemSize:      cfg.ElemSize,
		initialNodes:  div(cfg.InitialBytes),
		maxBlockNodes: div(cfg.MaxBlockBytes),
		maxTotalNodes: div(cfg.MaxTotalBytes),
	}
}

// ErrMemoryExceeded is returned by Reserve (and passed through unwrapped by
// ast.Tree.Alloc) when a request would exceed the arena's configured
// total-bytes budget.
type ErrMemoryExceeded struct {
	Requested uint64
	Limit     uint64
}

func (e *ErrMemoryExceeded) Error() string {
	return fmt.Sprintf("arena: allocation of %d nodes would exceed the %d node budget", e.Requested, e.Limit)
}

// Reserve bumps the allocator by one slot and returns the (blockIndex,
// slotIndex) coordinate the caller should construct its value at. It grows
// the block chain geometrically (capped at maxBlockNodes) on exhaustion.
// Reserve never returns an error for normal growth; it only fails via
// ErrMemoryExceeded when the total budget configured at New is exhausted.
func (a *Arena) Reserve() (blockIdx int, slotIdx int, err error) {
	if len(a.blocks) == 0 {
		if err := a.grow(); err != nil {
			return 0, 0, err
		}
	}
	blk := a.blocks[a.cur]
	for blk.used >= blk.cap {
		if a.cur == len(a.blocks)-1 {
			if err := a.grow(); err != nil {
				return 0, 0, err
			}
		}
		a.cur++
		blk = a.blocks[a.cur]
	}
	idx := blk.used
	blk.used++
	a.totalNodes++
	if a.totalNodes > a.highWater {
		a.highWater = a.totalNodes
	}
	return a.cur, int(idx), nil
}

func (a *Arena) grow() error {
	var nextCap uint64
	if len(a.blocks) == 0 {
		nextCap = a.initialNodes
	} else {
		nextCap = a.blocks[len(a.blocks)-1].cap * 2
	}
	if nextCap > a.maxBlockNodes {
		nextCap = a.maxBlockNodes
	}
	if nextCap == 0 {
		nextCap = 1
	}
	if a.maxTotalNodes != 0 {
		projected := a.capacityNodes() + nextCap
		if projected > a.maxTotalNodes {
			remaining := a.maxTotalNodes - a.capacityNodes()
			if remaining == 0 {
				return &ErrMemoryExceeded{Requested: nextCap, Limit: a.maxTotalNodes}
			}
			nextCap = remaining
		}
	}
	a.blocks = append(a.blocks, &block{cap: nextCap})
	return nil
}

func (a *Arena) capacityNodes() uint64 {
	var total uint64
	for _, b := range a.blocks {
		total += b.cap
	}
	return total
}

// Reset marks every block free-to-reuse in O(1) (per block) without
// releasing the underlying capacity, so a parser that reuses its arena
// across many parses amortizes the growth cost. Every slot coordinate
// returned by a prior Reserve is invalid to construct into after Reset;
// the ast package enforces this by discarding its own node slices on
// Reset (see ast.Tree.Reset).
func (a *Arena) Reset() {
	for _, b := range a.blocks {
		b.used = 0
	}
	a.cur = 0
	a.totalNodes = 0
}

// Stats reports current usage for parse-outcome metadata.
func (a *Arena) Stats() Stats {
	s := Stats{Blocks: len(a.blocks)}
	for _, b := range a.blocks {
		s.NodesInUse += int(b.used)
		s.TotalBytes += b.cap * a.elemSize
	}
	s.HighWaterBytes = a.highWater * a.elemSize
	return s
}

// BlockCap returns the capacity, in slots, of the block at index i. Used
// by ast.Tree to size its parallel []Node slices identically.
func (a *Arena) BlockCap(i int) int {
	return int(a.blocks[i].cap)
}

// NumBlocks returns how many blocks currently exist.
func (a *Arena) NumBlocks() int {
	return len(a.blocks)
}
