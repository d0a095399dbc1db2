// Package ast defines the fixed-size syntax tree node (spec §4.2), the
// arena-backed tree that owns node storage (spec §4.1), and a
// visualization/dump surface consumed by external tooling (spec §1 names
// dump utilities as an out-of-core collaborator).
package ast

import (
	"unsafe"

	"github.com/ha1tch/sqlcore/arena"
)

// Flags is a bit set of grammar-level modifiers (DISTINCT, ALL, RECURSIVE,
// IF NOT EXISTS, OR REPLACE, UNIQUE, TEMPORARY, aggregate/window markers,
// and the parse-context hint recorded on identifier/column-reference
// primaries per spec §4.7 "Context hints").
type Flags uint32

const (
	FlagDistinct Flags = 1 << iota
	FlagAll
	FlagRecursive
	FlagIfNotExists
	FlagIfExists
	FlagOrReplace
	FlagUnique
	FlagTemporary
	FlagIsAggregate
	FlagHasWindow
	FlagNot       // negated predicate (NOT BETWEEN, NOT IN, NOT LIKE, IS NOT)
	FlagAscending // ORDER BY direction; absence means DESC only when FlagDescending set
	FlagDescending
	FlagNullsFirst
	FlagNullsLast
	FlagCascade
	FlagRestrict
	FlagInnerJoin
	FlagLeftJoin
	FlagRightJoin
	FlagFullJoin
	FlagCrossJoin
	FlagUnion
	FlagIntersect
	FlagExcept

	// ctxShift is where the 8-bit parse-context hint (spec §4.7) begins;
	// everything below is grammar-modifier bits, everything from here up
	// is the context byte.
	ctxShift = 24
)

// Context is the parse-context hint recorded in a Node's upper flag byte
// when the node is an identifier-or-column-reference primary. It lets
// downstream resolution disambiguate "is this a column, a constant, or a
// function name" cheaply, per spec §4.7/§9.
type Context uint8

const (
	CtxNone Context = iota
	CtxSelectList
	CtxFrom
	CtxWhere
	CtxGroupBy
	CtxHaving
	CtxOrderBy
	CtxJoinCondition
	CtxCase
	CtxFunctionArg
	CtxSubquery
)

// WithContext returns f with its context byte set to c.
func (f Flags) WithContext(c Context) Flags {
	return (f &^ (0xFF << ctxShift)) | Flags(c)<<ctxShift
}

// Context extracts the parse-context hint from f.
func (f Flags) Context() Context {
	return Context(f >> ctxShift)
}

// Semantic is the node payload's semantic slot (spec §3 "Context-union
// payload"). This module keeps only the semantic slot on the node itself;
// debug/visualization data (depth, subtree size, hash) lives in a side
// table keyed by node id instead of a second in-node union member — the
// alternative spec §9 explicitly sanctions ("place debug data in a side
// table keyed by node id"). That keeps Node's layout identical regardless
// of whether a caller ever asks for a dump.
type Semantic struct {
	InferredType  uint16
	IsConstant    bool
	OperatorAttrs uint8
	TableID       uint32
}

// Node is the fixed-size tree record every syntactic construct is built
// from (spec §4.2). Layout is identical regardless of Kind; kind-specific
// meaning lives in Kind, Flags, the text views, and Semantic.
//
// Text/Schema/Aux are Go strings, which are themselves already a
// (pointer, length) pair into existing backing storage — slicing the
// original query text to build one allocates nothing and aliases the
// source, satisfying the zero-copy discipline in spec §3/§9 without a
// separate "view" type.
type Node struct {
	id uint64 // monotone construction-order id; see spec §5 "Ordering"

	Kind       Kind
	Flags      Flags
	ChildCount uint16
	Prec       uint8
	OpKind     uint8

	Start uint32
	End   uint32

	Parent      *Node
	FirstChild  *Node
	NextSibling *Node

	Text   string // primary text view: identifier, operator symbol, literal lexeme, function name
	Schema string // secondary qualifier 1 (e.g. schema, or referenced-table name)
	Aux    string // secondary qualifier 2 (e.g. catalog, alias, or target type name)

	Semantic Semantic
}

// approxNodeBytes is used only for arena byte-budget accounting (spec
// §4.1's size-based caps); it has no bearing on placement, which is done
// by ordinary Go slice indexing (see Tree).
var approxNodeBytes = uint64(unsafe.Sizeof(Node{}))

// NodeByteSize reports the measured size of one Node, for callers (config,
// diagnostics) that want to translate a byte budget into a node count the
// same way Tree does internally.
func NodeByteSize() uint64 { return approxNodeBytes }

// ID returns the node's monotone construction-order identifier.
func (n *Node) ID() uint64 { return n.id }

// Tree owns all Node storage for a single parse via an arena.Arena sized
// in Node-equivalent slots. It mirrors the arena's block chain with
// parallel []Node slices so that the actual struct values (and their Go
// pointers) live somewhere the garbage collector can scan normally; the
// arena only tracks bump offsets and byte-budget bookkeeping.
type Tree struct {
	a        *arena.Arena
	blocks   [][]Node
	nextID   uint64
}

// NewTree creates a Tree over a fresh arena sized per cfg.
func NewTree(cfg arena.Config) *Tree {
	cfg.ElemSize = approxNodeBytes
	return &Tree{a: arena.New(cfg)}
}

// Alloc reserves and zero-initializes one Node, returning a stable pointer
// into arena-owned storage. The pointer is valid until the next Reset.
func (t *Tree) Alloc(kind Kind, start, end uint32) (*Node, error) {
	blockIdx, slotIdx, err := t.a.Reserve()
	if err != nil {
		return nil, err
	}
	if blockIdx >= len(t.blocks) {
		t.blocks = append(t.blocks, make([]Node, t.a.BlockCap(blockIdx)))
	}
	n := &t.blocks[blockIdx][slotIdx]
	*n = Node{id: t.nextID, Kind: kind, Start: start, End: end}
	t.nextID++
	return n, nil
}

// Reset releases all nodes back to the arena in O(1) per block and drops
// this Tree's own slice references, so every previously returned *Node
// becomes a dangling reference the caller must not use again (spec §5
// "Resource sharing").
func (t *Tree) Reset() {
	t.a.Reset()
	t.blocks = nil
	t.nextID = 0
}

// Stats exposes the underlying arena's usage statistics.
func (t *Tree) Stats() arena.Stats { return t.a.Stats() }

// Builder accumulates a node's children with O(1) append, then attaches
// them to the parent in one call. Clause parsers hold one Builder per
// node under construction; spec §4.2 deliberately keeps no "last child"
// field on Node itself; Builder is where that bookkeeping lives instead.
type Builder struct {
	first, last *Node
	count       uint16
}

// Add appends child to the list being built. A nil child is ignored, so
// callers can write `b.Add(optionalClause())` without a nil check.
func (b *Builder) Add(child *Node) {
	if child == nil {
		return
	}
	if b.first == nil {
		b.first = child
	} else {
		b.last.NextSibling = child
	}
	b.last = child
	b.count++
}

// AnyAdded reports whether Add has been called at least once, for callers
// that only want to attach a child list when it turned out non-empty
// (e.g. an optional table-constraint list).
func (b *Builder) AnyAdded() bool { return b.count > 0 }

// Attach finalizes the child list onto parent: sets parent.FirstChild,
// parent.ChildCount, and every child's Parent link.
func (b *Builder) Attach(parent *Node) {
	parent.FirstChild = b.first
	parent.ChildCount = b.count
	for c := b.first; c != nil; c = c.NextSibling {
		c.Parent = parent
	}
}

// Children returns a node's children as a slice, for read-only traversal
// (tests, dump tooling). It walks the intrusive sibling list once.
func Children(n *Node) []*Node {
	if n == nil || n.FirstChild == nil {
		return nil
	}
	out := make([]*Node, 0, n.ChildCount)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}
