package ast

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fatih/color"
	json "github.com/goccy/go-json"
)

// DebugInfo is the side table spec §9 sanctions in place of a second
// in-node payload slot: per-node depth, subtree size, and a content hash,
// keyed by Node.ID(). It exists purely for tooling (dump/visualization,
// determinism testing) and is never consulted by the parser itself.
type DebugInfo struct {
	Depth       int
	SubtreeSize int
	Hash        uint64
}

// Digest walks the tree rooted at n and returns a DebugInfo side table
// plus the root's own hash. The hash composition (kind, flags, text views,
// then each child's hash in order) makes it sensitive to shape and content
// but not to anything nondeterministic, satisfying spec §8 Testable
// Property 5 (byte-identical serialization across runs).
func Digest(root *Node) (map[uint64]DebugInfo, uint64) {
	table := make(map[uint64]DebugInfo)
	h := digest(root, 0, table)
	return table, h
}

func digest(n *Node, depth int, table map[uint64]DebugInfo) uint64 {
	if n == nil {
		return 0
	}
	d := xxhash.New()
	var hdr [12]byte
	binary.LittleEndian.PutUint16(hdr[0:2], uint16(n.Kind))
	binary.LittleEndian.PutUint32(hdr[2:6], uint32(n.Flags))
	binary.LittleEndian.PutUint16(hdr[6:8], n.ChildCount)
	binary.LittleEndian.PutUint16(hdr[8:10], uint16(n.OpKind))
	_, _ = d.Write(hdr[:])
	_, _ = io.WriteString(d, n.Text)
	_, _ = io.WriteString(d, n.Schema)
	_, _ = io.WriteString(d, n.Aux)

	size := 1
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		childHash := digest(c, depth+1, table)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], childHash)
		_, _ = d.Write(b[:])
		size += table[c.id].SubtreeSize
	}

	hash := d.Sum64()
	table[n.id] = DebugInfo{Depth: depth, SubtreeSize: size, Hash: hash}
	return hash
}

// jsonNode is the wire shape for DumpJSON: it flattens the intrusive
// sibling list into an ordinary slice, which is what every JSON consumer
// actually wants (spec §1 names a visualization/dump utility as an
// external, out-of-core collaborator of exactly this shape).
type jsonNode struct {
	Kind     string     `json:"kind"`
	Flags    uint32     `json:"flags,omitempty"`
	Start    uint32     `json:"start"`
	End      uint32     `json:"end"`
	Text     string     `json:"text,omitempty"`
	Schema   string     `json:"schema,omitempty"`
	Aux      string     `json:"aux,omitempty"`
	Prec     uint8      `json:"prec,omitempty"`
	OpKind   uint8      `json:"opKind,omitempty"`
	Hash     string     `json:"hash,omitempty"`
	Children []jsonNode `json:"children,omitempty"`
}

func toJSONNode(n *Node, debug map[uint64]DebugInfo) jsonNode {
	jn := jsonNode{
		Kind:   n.Kind.String(),
		Flags:  uint32(n.Flags),
		Start:  n.Start,
		End:    n.End,
		Text:   n.Text,
		Schema: n.Schema,
		Aux:    n.Aux,
		Prec:   n.Prec,
		OpKind: n.OpKind,
	}
	if debug != nil {
		if info, ok := debug[n.id]; ok {
			jn.Hash = fmt.Sprintf("%016x", info.Hash)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		jn.Children = append(jn.Children, toJSONNode(c, debug))
	}
	return jn
}

// DumpJSON serializes the tree rooted at root to indented JSON, including
// each node's stable content hash, using goccy/go-json rather than
// encoding/json for the dump path's throughput.
func DumpJSON(root *Node) ([]byte, error) {
	debug, _ := Digest(root)
	return json.MarshalIndent(toJSONNode(root, debug), "", "  ")
}

// DumpText renders an indented, optionally colorized tree dump (the shape
// a CLI driver prints by default). useColor is normally color.NoColor's
// negation, computed by the caller against the output stream.
func DumpText(w io.Writer, root *Node, useColor bool) {
	kindColor := color.New(color.FgCyan)
	textColor := color.New(color.FgYellow)
	if !useColor {
		kindColor.DisableColor()
		textColor.DisableColor()
	}
	dumpText(w, root, "", true, kindColor, textColor)
}

func dumpText(w io.Writer, n *Node, prefix string, last bool, kindColor, textColor *color.Color) {
	if n == nil {
		return
	}
	branch := "├── "
	nextPrefix := prefix + "│   "
	if last {
		branch = "└── "
		nextPrefix = prefix + "    "
	}
	line := kindColor.Sprint(n.Kind.String())
	if n.Text != "" {
		line += " " + textColor.Sprintf("%q", n.Text)
	}
	fmt.Fprintf(w, "%s%s%s [%d:%d]\n", prefix, branch, line, n.Start, n.End)

	kids := Children(n)
	for i, c := range kids {
		dumpText(w, c, nextPrefix, i == len(kids)-1, kindColor, textColor)
	}
}

// DumpSExpr renders a compact, deterministic S-expression form used by
// tests to assert tree shape (spec §8 scenarios E1-E4) without depending
// on JSON key ordering.
func DumpSExpr(n *Node) string {
	var sb strings.Builder
	writeSExpr(&sb, n)
	return sb.String()
}

func writeSExpr(sb *strings.Builder, n *Node) {
	if n == nil {
		sb.WriteString("nil")
		return
	}
	sb.WriteByte('(')
	sb.WriteString(n.Kind.String())
	if n.Text != "" {
		sb.WriteByte(' ')
		sb.WriteString(n.Text)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteByte(' ')
		writeSExpr(sb, c)
	}
	sb.WriteByte(')')
}
